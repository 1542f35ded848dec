package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Reservation struct {
	bun.BaseModel `bun:"table:reservation"`

	ID          int64      `bun:"id,pk"`
	UserID      int64      `bun:"user_id,notnull"`
	SpectacleID int64      `bun:"spectacle_id,notnull"`
	NbPlaces    int        `bun:"nb_places,notnull"`
	Date        time.Time  `bun:"date,nullzero"`
	Used        bool       `bun:"used,notnull,default:false"`
	UsedAt      *time.Time `bun:"used_at,nullzero"`

	// Relations
	Spectacle *Spectacle `bun:"rel:belongs-to,join:spectacle_id=id"`
	User      *User      `bun:"rel:belongs-to,join:user_id=id"`
}

type Spectacle struct {
	bun.BaseModel `bun:"table:spectacle"`

	ID             int64     `bun:"id,pk"`
	Title          string    `bun:"title,notnull"`
	DateSpectacle  time.Time `bun:"date_spectacle,notnull"`
	HeureSpectacle string    `bun:"heure_spectacle,notnull"`
	Lieu           string    `bun:"lieu,notnull"`
}

type User struct {
	bun.BaseModel `bun:"table:user"`

	ID     int64  `bun:"id,pk"`
	Nom    string `bun:"nom,notnull"`
	Prenom string `bun:"prenom,notnull"`
	Email  string `bun:"email,unique,notnull"`
}
