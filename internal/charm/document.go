// ABOUTME: Per-user progress documents stored under doc:<user id> keys.
// ABOUTME: Writes deep-merge into the stored JSON the way a document store's merge-set does.
package charm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/harperreed/rhythm/internal/models"
)

func docKey(userID string) []byte {
	return []byte(DocumentPrefix + userID)
}

// ReadDocument pulls from the cloud and returns the user's document, or
// models.ErrDocumentNotFound.
func (c *Client) ReadDocument(ctx context.Context, userID string) (*models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.Sync(); err != nil {
		return nil, fmt.Errorf("sync before read: %w", err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	raw, found, err := c.getLocked(docKey(userID))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.ErrDocumentNotFound
	}

	doc, err := unmarshalJSON[models.Document](raw)
	if err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

// MergeDocument merges doc into the stored document and syncs.
func (c *Client) MergeDocument(ctx context.Context, userID string, doc *models.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	patch, err := toObject(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv.IsReadOnly() {
		return fmt.Errorf("cannot write: database is locked by another process (MCP server?)")
	}

	key := docKey(userID)
	raw, found, err := c.getLocked(key)
	if err != nil {
		return err
	}
	merged := patch
	if found {
		var existing map[string]any
		if err := json.Unmarshal(raw, &existing); err != nil {
			return fmt.Errorf("decode stored document: %w", err)
		}
		merged = deepMerge(existing, patch)
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return err
	}
	if err := c.kv.Set(key, data); err != nil {
		return err
	}
	return c.syncIfEnabled()
}

// getLocked looks a key up through Keys so a missing document is told apart
// from a read failure. Callers hold c.mu.
func (c *Client) getLocked(key []byte) ([]byte, bool, error) {
	keys, err := c.kv.Keys()
	if err != nil {
		return nil, false, err
	}
	for _, k := range keys {
		if bytes.Equal(k, key) {
			val, err := c.kv.Get(key)
			if err != nil {
				return nil, false, err
			}
			return val, true, nil
		}
	}
	return nil, false, nil
}

// deepMerge merges src into dst. Objects merge per key; arrays and scalars
// replace.
func deepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for k, sv := range src {
		srcObj, srcIsObj := sv.(map[string]any)
		dstObj, dstIsObj := dst[k].(map[string]any)
		if srcIsObj && dstIsObj {
			dst[k] = deepMerge(dstObj, srcObj)
			continue
		}
		dst[k] = sv
	}
	return dst
}

func toObject(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// unmarshalJSON is a helper to unmarshal JSON data.
func unmarshalJSON[T any](data []byte) (*T, error) {
	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
