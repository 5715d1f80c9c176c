package stylist

import (
	"context"
	"errors"
	"testing"

	"dripmateapi/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProvider struct {
	replies  []string
	err      error
	requests []llm.Request
}

func (f *fakeProvider) Kind() llm.ProviderKind {
	return llm.KindOllama
}

func (f *fakeProvider) Generate(ctx context.Context, req llm.Request) (string, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", nil
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

const singleOutfit = `{"outfits": [{"id": 1,
	"top": {"name": "white graphic tee", "reason": "breaks up the black"},
	"bottom": {"name": "black cargo pants", "reason": "utility look"},
	"footwear": {"name": "chunky sneakers", "reason": "streetwear staple"}}]}`

func TestSuggestEndToEnd(t *testing.T) {
	provider := &fakeProvider{replies: []string{singleOutfit}}
	suggester := NewSuggester(provider, zap.NewNop())

	result := suggester.Suggest(context.Background(), SuggestionRequest{
		Item:     "black hoodie",
		Vibe:     "streetwear",
		Gender:   "male",
		NumIdeas: 1,
	})

	require.False(t, result.Failed())
	assert.Equal(t, StateDone, result.State)
	require.Len(t, result.Outfits, 1)
	o := result.Outfits[0]
	assert.Equal(t, 1, o.ID)
	assert.Equal(t, "white graphic tee", o.Top.Name)
	assert.Equal(t, "black cargo pants", o.Bottom.Name)
	assert.Equal(t, "chunky sneakers", o.Footwear.Name)
	assert.Nil(t, o.Layer)

	require.Len(t, provider.requests, 1)
	assert.True(t, provider.requests[0].Options.JSON)
	assert.Nil(t, provider.requests[0].Image)
	assert.Contains(t, provider.requests[0].Prompt, "- Gender: male")
}

func TestSuggestIgnoresProse(t *testing.T) {
	clean := NewSuggester(&fakeProvider{replies: []string{singleOutfit}}, nil).
		Suggest(context.Background(), SuggestionRequest{Item: "black hoodie", Vibe: "streetwear", NumIdeas: 1})
	chatty := NewSuggester(&fakeProvider{replies: []string{"Sure! ```json " + singleOutfit + " ``` Hope that helps!"}}, nil).
		Suggest(context.Background(), SuggestionRequest{Item: "black hoodie", Vibe: "streetwear", NumIdeas: 1})

	require.False(t, chatty.Failed())
	assert.Equal(t, clean.Outfits, chatty.Outfits)
}

func TestSuggestTransportFailure(t *testing.T) {
	provider := &fakeProvider{err: &llm.InvocationError{Provider: llm.KindOllama, Cause: errors.New("connection refused")}}

	result := NewSuggester(provider, zap.NewNop()).Suggest(context.Background(), SuggestionRequest{Item: "tee", Vibe: "casual"})

	require.True(t, result.Failed())
	assert.Equal(t, FailureTransport, result.Failure.Kind)
	assert.Contains(t, result.Failure.Message, "connection refused")
	assert.Equal(t, StateFailed, result.State)
	assert.NotNil(t, result.Outfits)
	assert.Empty(t, result.Outfits)
}

func TestSuggestMalformedOutput(t *testing.T) {
	provider := &fakeProvider{replies: []string{"I cannot help with that."}}

	result := NewSuggester(provider, zap.NewNop()).Suggest(context.Background(), SuggestionRequest{Item: "tee", Vibe: "casual"})

	require.True(t, result.Failed())
	assert.Equal(t, FailureMalformed, result.Failure.Kind)
	assert.Empty(t, result.Outfits)
}

func TestSuggestEmptyResult(t *testing.T) {
	for _, reply := range []string{`{"outfits": []}`, `{"outfits": ["a", 1]}`, `{"looks": []}`} {
		result := NewSuggester(&fakeProvider{replies: []string{reply}}, zap.NewNop()).
			Suggest(context.Background(), SuggestionRequest{Item: "tee", Vibe: "casual"})

		require.True(t, result.Failed(), reply)
		assert.Equal(t, FailureEmpty, result.Failure.Kind)
		assert.Equal(t, emptyResultMessage, result.Failure.Message)
		assert.Empty(t, result.Outfits)
	}
}

func TestSuggestDropsBottomForBottomBase(t *testing.T) {
	provider := &fakeProvider{replies: []string{singleOutfit}}

	result := NewSuggester(provider, zap.NewNop()).Suggest(context.Background(), SuggestionRequest{Item: "blue jeans", Vibe: "casual", NumIdeas: 1})

	require.False(t, result.Failed())
	assert.Nil(t, result.Outfits[0].Bottom)
	assert.NotNil(t, result.Outfits[0].Top)
}

func TestSuggestClassicSchema(t *testing.T) {
	provider := &fakeProvider{replies: []string{`{"outfits": [{"item1": {"name": "tee", "reason": "r"}, "item2": {"name": "jeans", "reason": "r"}, "footwear": {"name": "vans", "reason": "r"}}]}`}}

	result := NewSuggester(provider, zap.NewNop()).Suggest(context.Background(), SuggestionRequest{
		Item:   "bomber jacket",
		Vibe:   "casual",
		Schema: SchemaClassic,
		Model:  "llama3:8b",
	})

	require.False(t, result.Failed())
	assert.Equal(t, "tee", result.Outfits[0].Item1.Name)
	assert.Equal(t, "jeans", result.Outfits[0].Item2.Name)
	assert.Nil(t, result.Outfits[0].Bottom)
	assert.Equal(t, "llama3:8b", provider.requests[0].Options.Model)
}
