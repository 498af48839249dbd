package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/arijitchhatui/swiftsend-service/internal/config"
	"github.com/arijitchhatui/swiftsend-service/internal/domain"
)

// esProfileIndex implements ProfileIndex on Elasticsearch.
type esProfileIndex struct {
	client *elasticsearch.Client
	index  string
}

// NewESProfileIndex creates a new Elasticsearch-backed profile index.
func NewESProfileIndex(cfg config.ElasticsearchConfig) (ProfileIndex, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	return &esProfileIndex{
		client: client,
		index:  cfg.ProfileIndex,
	}, nil
}

func (r *esProfileIndex) Index(ctx context.Context, profile *domain.UserProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	res, err := r.client.Index(
		r.index,
		bytes.NewReader(data),
		r.client.Index.WithContext(ctx),
		r.client.Index.WithDocumentID(profile.UserID.Hex()),
	)
	if err != nil {
		return fmt.Errorf("failed to index profile: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch error: %s", res.String())
	}
	return nil
}

func (r *esProfileIndex) Search(ctx context.Context, query string, limit int) ([]domain.UserProfile, error) {
	body := map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"username", "fullName"},
			},
		},
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := r.client.Search(
		r.client.Search.WithContext(ctx),
		r.client.Search.WithIndex(r.index),
		r.client.Search.WithBody(bytes.NewReader(data)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search profiles: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch error: %s", res.String())
	}

	var result esResponse
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	profiles := make([]domain.UserProfile, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		var profile domain.UserProfile
		if err := json.Unmarshal(hit.Source, &profile); err != nil {
			continue
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

type esResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

var _ ProfileIndex = (*esProfileIndex)(nil)
