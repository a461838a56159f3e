// Package similarity ranks embedding vectors against a query by cosine
// similarity. It is the reference implementation of the search contract;
// the pgvector-backed repositories must match its ordering, threshold and
// cap semantics while delegating the scan to the database index.
package similarity

import (
	"math"
	"sort"

	"github.com/google/uuid"
)

// Candidate is one stored vector under consideration.
type Candidate struct {
	Id       uuid.UUID
	Content  string
	Metadata map[string]interface{}
	Vector   []float32
}

// Scored is a candidate that passed the threshold, annotated with its
// cosine similarity and distance (1 - similarity).
type Scored struct {
	Candidate
	Similarity float64
	Distance   float64
}

// Rank scores every candidate against the query vector, keeps those with
// similarity strictly greater than threshold, and returns them ordered by
// descending similarity capped at limit. Ties keep input order. Candidates
// with a missing or mismatched-dimension vector are skipped.
func Rank(query []float32, candidates []Candidate, threshold float64, limit int) []Scored {
	if limit <= 0 || len(query) == 0 {
		return nil
	}

	scored := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		if len(c.Vector) != len(query) {
			continue
		}
		sim := CosineSimilarity(query, c.Vector)
		if sim > threshold {
			scored = append(scored, Scored{
				Candidate:  c,
				Similarity: sim,
				Distance:   1 - sim,
			})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// CosineSimilarity computes dot(a,b) / (|a|*|b|). Zero-magnitude vectors
// score 0. Callers must pass equal-length vectors.
func CosineSimilarity(a, b []float32) float64 {
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
