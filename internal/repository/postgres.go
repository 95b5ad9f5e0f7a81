package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"estatecore/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// PostgresRepository handles all database access: the live property table,
// the document store with its embedding column, and chat turn logging.
// The underlying pool supports concurrent read access from in-flight requests.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository opens a connection pool and verifies it.
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	// Disable prepared statement caching to avoid "unnamed prepared statement
	// does not exist" errors behind connection poolers
	if !strings.Contains(dsn, "?") {
		dsn += "?prefer_simple_protocol=true"
	} else {
		dsn += "&prefer_simple_protocol=true"
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// Close closes the database connection pool.
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// SearchProperties runs a parameterized filter query over live listings.
// Callers must pass at least one constraint; this method never scans the
// whole table unbounded. Ordering is recency first, then proximity of price
// to the midpoint of the stated budget range when one exists.
func (r *PostgresRepository) SearchProperties(ctx context.Context, params *model.QueryParams, limit int) ([]model.Property, error) {
	whereClauses := []string{"listing_status = 'live'"}
	args := []interface{}{}
	argIndex := 1

	if params != nil {
		if params.Location != nil {
			whereClauses = append(whereClauses, fmt.Sprintf("location ILIKE $%d", argIndex))
			args = append(args, "%"+*params.Location+"%")
			argIndex++
		}
		if params.PropertyType != nil {
			whereClauses = append(whereClauses, fmt.Sprintf("property_type ILIKE $%d", argIndex))
			args = append(args, *params.PropertyType)
			argIndex++
		}
		if params.PriceMin != nil {
			whereClauses = append(whereClauses, fmt.Sprintf("price >= $%d", argIndex))
			args = append(args, *params.PriceMin)
			argIndex++
		}
		if params.PriceMax != nil {
			whereClauses = append(whereClauses, fmt.Sprintf("price <= $%d", argIndex))
			args = append(args, *params.PriceMax)
			argIndex++
		}
		if params.Bedrooms != nil {
			whereClauses = append(whereClauses, fmt.Sprintf("bedrooms = $%d", argIndex))
			args = append(args, *params.Bedrooms)
			argIndex++
		}
		if params.Bathrooms != nil {
			whereClauses = append(whereClauses, fmt.Sprintf("bathrooms = $%d", argIndex))
			args = append(args, *params.Bathrooms)
			argIndex++
		}
	}

	orderBy := "listed_date DESC NULLS LAST"
	if params != nil && params.PriceMin != nil && params.PriceMax != nil {
		midpoint := (*params.PriceMin + *params.PriceMax) / 2
		orderBy = fmt.Sprintf("listed_date DESC NULLS LAST, ABS(price - $%d) ASC", argIndex)
		args = append(args, midpoint)
		argIndex++
	}

	query := fmt.Sprintf(`
		SELECT
			id, title, location, price, bedrooms, bathrooms, area_sqft,
			property_type, listing_status, developer, description,
			listed_date, created_at, updated_at
		FROM properties
		WHERE %s
		ORDER BY %s
		LIMIT $%d
	`, strings.Join(whereClauses, " AND "), orderBy, argIndex)
	args = append(args, limit)

	var properties []model.Property
	if err := r.db.SelectContext(ctx, &properties, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch properties: %w", err)
	}
	return properties, nil
}

// SimilaritySearchDocuments runs a cosine similarity search over document
// embeddings and returns the top-k matches with their similarity score.
func (r *PostgresRepository) SimilaritySearchDocuments(ctx context.Context, embedding []float32, topK int) ([]model.Document, error) {
	vec := pgvector.NewVector(embedding)
	query := `
		SELECT
			id, title, content, doc_type, priority, created_at,
			1 - (embedding <=> $1) AS similarity
		FROM documents
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $2
	`
	var docs []model.Document
	if err := r.db.SelectContext(ctx, &docs, query, vec, topK); err != nil {
		return nil, fmt.Errorf("failed to run similarity search: %w", err)
	}
	return docs, nil
}

// FullTextSearchDocuments is the degraded path used when no embedder is
// available. It ranks documents by ts_rank against the raw query text.
func (r *PostgresRepository) FullTextSearchDocuments(ctx context.Context, text string, topK int) ([]model.Document, error) {
	query := `
		SELECT
			id, title, content, doc_type, priority, created_at,
			ts_rank(search_vector, plainto_tsquery('english', $1)) AS text_rank
		FROM documents
		WHERE search_vector @@ plainto_tsquery('english', $1)
		ORDER BY text_rank DESC
		LIMIT $2
	`
	var docs []model.Document
	if err := r.db.SelectContext(ctx, &docs, query, text, topK); err != nil {
		return nil, fmt.Errorf("failed to run full-text search: %w", err)
	}
	return docs, nil
}

// ListDocumentsMissingEmbedding returns documents that have not been
// embedded yet, oldest first.
func (r *PostgresRepository) ListDocumentsMissingEmbedding(ctx context.Context, limit int) ([]model.Document, error) {
	query := `
		SELECT id, title, content, doc_type, priority, created_at
		FROM documents
		WHERE embedding IS NULL
		ORDER BY created_at ASC
		LIMIT $1
	`
	var docs []model.Document
	if err := r.db.SelectContext(ctx, &docs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list unembedded documents: %w", err)
	}
	return docs, nil
}

// UpdateDocumentEmbedding stores the embedding vector for a document.
func (r *PostgresRepository) UpdateDocumentEmbedding(ctx context.Context, docID int64, embedding []float32) error {
	vec := pgvector.NewVector(embedding)
	query := `UPDATE documents SET embedding = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, vec, docID); err != nil {
		return fmt.Errorf("failed to update embedding: %w", err)
	}
	return nil
}

// LogChatTurn records one completed chat turn for offline analysis.
func (r *PostgresRepository) LogChatTurn(ctx context.Context, requestID, sessionID, message string, intent model.Intent, confidence float64, sourceCount int, responseTimeMs int64) error {
	query := `
		INSERT INTO chat_logs (request_id, session_id, message, intent, confidence, source_count, response_time_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := r.db.ExecContext(ctx, query, requestID, sessionID, message, string(intent), confidence, sourceCount, responseTimeMs); err != nil {
		return fmt.Errorf("failed to log chat turn: %w", err)
	}
	return nil
}
