package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// Property represents one row of the live property listings table.
// Only published ("live") rows are queryable through this path.
type Property struct {
	ID           int64      `json:"id" db:"id"`
	Title        *string    `json:"title,omitempty" db:"title"`
	Location     *string    `json:"location,omitempty" db:"location"`
	Price        *float64   `json:"price,omitempty" db:"price"`
	Bedrooms     *int       `json:"bedrooms,omitempty" db:"bedrooms"`
	Bathrooms    *int       `json:"bathrooms,omitempty" db:"bathrooms"`
	AreaSqft     *float64   `json:"area_sqft,omitempty" db:"area_sqft"`
	PropertyType *string    `json:"property_type,omitempty" db:"property_type"`
	Status       string     `json:"listing_status" db:"listing_status"`
	Developer    *string    `json:"developer,omitempty" db:"developer"`
	Description  *string    `json:"description,omitempty" db:"description"`
	ListedDate   *time.Time `json:"listed_date,omitempty" db:"listed_date"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Document represents one ingested document chunk (market report, policy
// text, neighborhood profile) with its embedding for similarity search.
type Document struct {
	ID         int64           `json:"id" db:"id"`
	Title      *string         `json:"title,omitempty" db:"title"`
	Content    string          `json:"content" db:"content"`
	DocType    *string         `json:"doc_type,omitempty" db:"doc_type"`
	Priority   *int            `json:"priority,omitempty" db:"priority"`
	Embedding  pgvector.Vector `json:"-" db:"embedding"`
	Similarity *float64        `json:"similarity,omitempty" db:"similarity"`
	TextRank   *float64        `json:"text_rank,omitempty" db:"text_rank"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}
