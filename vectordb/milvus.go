package vectordb

import (
	"context"
	"fmt"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/andozai/retrieval/config"
	"github.com/andozai/retrieval/schema"
)

// Field names of the chunk collection. The vector field is deliberately
// absent from outputFields.
const (
	fieldID       = "id"
	fieldDocID    = "doc_id"
	fieldText     = "text"
	fieldPage     = "page"
	fieldCategory = "category"
	fieldVector   = "vector"
)

type milvusProvider struct {
	cli        client.Client
	collection string
	metric     entity.MetricType
	searchEf   int
}

func newMilvusProvider(ctx context.Context, cfg config.VectorDBConfig) (*milvusProvider, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	cli, err := client.NewClient(ctx, client.Config{
		Address:  addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DBName:   cfg.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("connect milvus %s: %w", addr, err)
	}
	metric := entity.COSINE
	switch strings.ToUpper(cfg.Metric) {
	case "", "COSINE":
		metric = entity.COSINE
	case "L2":
		metric = entity.L2
	case "IP":
		metric = entity.IP
	}
	ef := cfg.SearchEf
	if ef <= 0 {
		ef = 64
	}
	return &milvusProvider{
		cli:        cli,
		collection: cfg.Collection,
		metric:     metric,
		searchEf:   ef,
	}, nil
}

func (p *milvusProvider) Close() error { return p.cli.Close() }

func (p *milvusProvider) Search(ctx context.Context, vector []float32, topK int) ([]schema.Candidate, error) {
	sp, err := entity.NewIndexHNSWSearchParam(p.searchEf)
	if err != nil {
		return nil, fmt.Errorf("milvus search params: %w", err)
	}
	results, err := p.cli.Search(
		ctx,
		p.collection,
		nil, // partitions
		"",  // expr
		[]string{fieldID, fieldDocID, fieldText, fieldPage, fieldCategory},
		[]entity.Vector{entity.FloatVector(vector)},
		fieldVector,
		p.metric,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: milvus search: %v", schema.ErrTransientBackend, err)
	}

	var out []schema.Candidate
	for _, rs := range results {
		for i := 0; i < rs.ResultCount; i++ {
			cand := schema.Candidate{
				Source:   schema.SourceVector,
				ChunkID:  columnString(rs.IDs, i),
				Distance: p.toDistance(rs.Scores[i]),
				Metadata: map[string]any{},
			}
			if col := rs.Fields.GetColumn(fieldID); col != nil {
				cand.ChunkID = columnString(col, i)
			}
			if col := rs.Fields.GetColumn(fieldDocID); col != nil {
				cand.DocumentID = columnString(col, i)
			}
			if col := rs.Fields.GetColumn(fieldText); col != nil {
				cand.Text = columnString(col, i)
			}
			if col := rs.Fields.GetColumn(fieldPage); col != nil {
				if v, err := col.GetAsInt64(i); err == nil {
					cand.Metadata["page"] = v
				}
			}
			if col := rs.Fields.GetColumn(fieldCategory); col != nil {
				if v, err := col.GetAsString(i); err == nil && v != "" {
					cand.Metadata["category"] = v
				}
			}
			out = append(out, cand)
		}
	}
	return out, nil
}

// toDistance normalizes index scores to a lower-is-closer, non-negative
// distance. COSINE and IP report similarity (higher is better); L2 already
// is a distance.
func (p *milvusProvider) toDistance(score float32) float64 {
	switch p.metric {
	case entity.COSINE, entity.IP:
		d := 1.0 - float64(score)
		if d < 0 {
			d = 0
		}
		return d
	default:
		return float64(score)
	}
}

func columnString(col entity.Column, idx int) string {
	if col == nil {
		return ""
	}
	if v, err := col.GetAsString(idx); err == nil {
		return v
	}
	if v, err := col.GetAsInt64(idx); err == nil {
		return fmt.Sprintf("%d", v)
	}
	return ""
}
