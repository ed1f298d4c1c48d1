package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/tieubaoca/arxchive-be/config"
	"github.com/tieubaoca/arxchive-be/types"
)

var (
	PAPER_CHUNK_CLASS        = "PaperChunk"
	PAPER_CHUNK_CLASS_OBJECT = &models.Class{
		Class: PAPER_CHUNK_CLASS,
		Properties: []*models.Property{
			{Name: "chunk", DataType: []string{"text"}},
			{Name: "relativePath", DataType: []string{"text"}},
		},
		VectorIndexType: "hnsw",
	}
)

type WeaviateStore struct {
	client *weaviate.Client
}

func NewWeaviateStore(cfg config.WeaviateStoreConfig) (*WeaviateStore, error) {
	var scheme string
	if strings.Contains(cfg.Host, "https") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host := strings.TrimPrefix(cfg.Host, scheme+"://")
	weaviateCfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if cfg.APIKey != "" {
		weaviateCfg.AuthConfig = auth.ApiKey{
			Value: cfg.APIKey,
		}
		weaviateCfg.Headers = map[string]string{
			"X-Weaviate-Api-Key":     cfg.APIKey,
			"X-Weaviate-Cluster-Url": fmt.Sprintf("%s://%s", scheme, host),
		}
	}
	PAPER_CHUNK_CLASS_OBJECT.Vectorizer = cfg.Text2Vec
	PAPER_CHUNK_CLASS_OBJECT.ModuleConfig = cfg.ModuleConfig
	client, err := weaviate.NewClient(weaviateCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %v", err)
	}

	return &WeaviateStore{
		client: client,
	}, nil
}

// EnsureSchema creates the PaperChunk class if it does not exist yet.
func (s *WeaviateStore) EnsureSchema(ctx context.Context) error {
	schema, err := s.client.Schema().Getter().Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to get schema: %v", err)
	}

	for _, class := range schema.Classes {
		if class.Class == PAPER_CHUNK_CLASS {
			return nil
		}
	}
	err = s.client.Schema().ClassCreator().WithClass(PAPER_CHUNK_CLASS_OBJECT).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to create PaperChunk class: %v", err)
	}
	return nil
}

// ReInit drops and recreates the PaperChunk class.
func (s *WeaviateStore) ReInit(ctx context.Context) error {
	err := s.client.Schema().ClassDeleter().WithClassName(PAPER_CHUNK_CLASS).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete PaperChunk class: %v", err)
	}

	err = s.client.Schema().ClassCreator().WithClass(PAPER_CHUNK_CLASS_OBJECT).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to create PaperChunk class: %v", err)
	}
	return nil
}

// SearchChunks runs a similarity search with a fixed column projection
// {chunk, relativePath} and an equality filter binding results to one
// paper's storage path.
func (s *WeaviateStore) SearchChunks(ctx context.Context, query string, relativePath string, limit int) ([]types.Chunk, error) {
	fields := []graphql.Field{
		{Name: "chunk"},
		{Name: "relativePath"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
	}

	nearText := s.client.GraphQL().NearTextArgBuilder().
		WithConcepts([]string{query})

	where := filters.Where().
		WithPath([]string{"relativePath"}).
		WithOperator(filters.Equal).
		WithValueString(relativePath)

	result, err := s.client.GraphQL().Get().
		WithClassName(PAPER_CHUNK_CLASS).
		WithFields(fields...).
		WithNearText(nearText).
		WithWhere(where).
		WithLimit(limit).
		Do(ctx)

	if err != nil {
		return nil, err
	}
	if result.Errors != nil {
		return nil, fmt.Errorf("chunk search failed: %v", result.Errors[0].Message)
	}

	var chunks []types.Chunk
	if data, ok := result.Data["Get"].(map[string]interface{})[PAPER_CHUNK_CLASS].([]interface{}); ok {
		for _, item := range data {
			if obj, ok := item.(map[string]interface{}); ok {
				chunk := types.Chunk{}
				if v, ok := obj["chunk"].(string); ok {
					chunk.Chunk = v
				}
				if v, ok := obj["relativePath"].(string); ok {
					chunk.RelativePath = v
				}
				chunks = append(chunks, chunk)
			}
		}
	}

	return chunks, nil
}
