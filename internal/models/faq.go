package models

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// Faq is a knowledge base entry. Embedding is nil until computed;
// unembedded rows are invisible to semantic search.
type Faq struct {
	ID        int64            `db:"id"`
	Question  string           `db:"question"`
	Answer    string           `db:"answer"`
	Category  string           `db:"category"`
	Embedding *pgvector.Vector `db:"embedding"`
	CreatedAt time.Time        `db:"created_at"`
	UpdatedAt time.Time        `db:"updated_at"`
}

// FaqMatch is a Faq ranked by vector distance to a query embedding.
// Lower distance means more relevant.
type FaqMatch struct {
	Faq
	Distance float64
}
