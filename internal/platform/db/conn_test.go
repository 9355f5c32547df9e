package db

import (
	"context"
	"testing"
)

func TestConnFromContextEmpty(t *testing.T) {
	if conn := ConnFromContext(context.Background()); conn != nil {
		t.Errorf("conn = %v, want nil fallback to pool", conn)
	}
}

func TestConnFromContextWrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), connKey, "not a conn")
	if conn := ConnFromContext(ctx); conn != nil {
		t.Errorf("conn = %v, want nil for wrong type", conn)
	}
}
