package models

type UserAccount struct {
	JsonModel
	Name       string   `gorm:"default:Guest" json:"name"`
	Email      string   `json:"email" gorm:"unique"`
	Password   string   `json:"-"`
	Gender     string   `json:"gender"`
	AgeGroup   *string  `json:"age_group"`
	SkinColour *string  `json:"skin_colour"`
	Banned     bool     `gorm:"default:false" json:"-"`
	LastIp     string   `json:"-"`
	Platform   Platform `sql:"type:ENUM('ios', 'android', 'web')" json:"platform"`

	WardrobeItems []WardrobeItem   `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	Favorites     []FavoriteOutfit `gorm:"foreignKey:UserAccountID;constraint:OnDelete:CASCADE" json:"-"`
}

type UserPushToken struct {
	JsonModel
	UserAccountID uint
	UserAccount   UserAccount `json:"-"`
	Platform      Platform    `sql:"type:ENUM('ios', 'android', 'web')" json:"platform"`
	Token         string      `json:"token"`
	Active        bool        `gorm:"default:false" json:"-"`
}

type UserPushIn struct {
	Token    string `json:"token" validate:"required"`
	Platform string `json:"platform" validate:"required,platform"`
}
