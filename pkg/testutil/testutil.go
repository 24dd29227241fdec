// Package testutil provides testing utilities for scenepool
package testutil

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/scenepool/pkg/catalog"
)

// TestLogger creates a test logger that writes to the test output.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// TestContext creates a test context with a 30-second timeout that is
// cancelled when the test completes.
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// SmallCatalog returns a two-template catalog: a single-node spark and a
// tagged grunt with one child.
func SmallCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Version: catalog.CurrentVersion,
		Templates: []catalog.Template{
			{Name: "fx/spark"},
			{
				Name:     "enemy/grunt",
				Tag:      "enemy",
				Children: []*catalog.Node{{Name: "weapon"}},
				Preload:  2,
			},
		},
	}
}
