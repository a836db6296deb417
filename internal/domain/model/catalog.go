package model

import "time"

// Movie is one catalog row.
type Movie struct {
	ID          int64      `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Year        int        `json:"year" db:"year"`
	ReleaseDate *time.Time `json:"release_date,omitempty" db:"release_date"`
	Plot        string     `json:"plot,omitempty" db:"plot"`
	Budget      int64      `json:"budget,omitempty" db:"budget"`
	BoxOffice   int64      `json:"boxoffice,omitempty" db:"boxoffice"`
	Rating      float64    `json:"rating" db:"rating"`
	Runtime     int        `json:"runtime,omitempty" db:"runtime"`
	Votes       int64      `json:"votes" db:"votes"`
	PosterURL   string     `json:"poster_url,omitempty" db:"poster_url"`
	RatingLabel string     `json:"rating_label" db:"rating_label"`
	TrailerLink string     `json:"trailer_link,omitempty" db:"trailer_link"`
}

// User is a registered account. Credentials are plaintext-matched; this is
// intentionally not a security design.
type User struct {
	Username  string `json:"username" db:"username"`
	Name      string `json:"name" db:"name"`
	Email     string `json:"email" db:"email"`
	BirthDate string `json:"birthDate" db:"birth_date"`
	Password  string `json:"-" db:"password"`
	IsEditor  bool   `json:"iseditor" db:"is_editor"`
}

type Review struct {
	ID        int64     `json:"id" db:"id"`
	MovieID   int64     `json:"movie_id" db:"movie_id"`
	Username  string    `json:"username" db:"username"`
	Rating    float64   `json:"rating" db:"rating"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type WatchlistItem struct {
	ID       int64     `json:"id" db:"id"`
	Username string    `json:"username" db:"username"`
	MovieID  int64     `json:"movie_id" db:"movie_id"`
	AddedAt  time.Time `json:"added_at" db:"added_at"`
}

type Genre struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Award is one movie award row, formatted for display by the handler.
type Award struct {
	AwardName string `json:"award_name" db:"award_name"`
	Category  string `json:"category" db:"category"`
	Year      int    `json:"year" db:"year"`
	Status    string `json:"status" db:"status"`
}
