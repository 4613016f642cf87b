package seed_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finboard/internal/seed"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     seed.Config
		wantErr bool
	}{
		{"json ok", seed.Config{Kind: seed.KindJSON, JSONPath: "data.json"}, false},
		{"json without path", seed.Config{Kind: seed.KindJSON}, true},
		{"sqlite without path", seed.Config{Kind: seed.KindSQLite}, true},
		{"sheets without id", seed.Config{Kind: seed.KindSheets}, true},
		{"unknown kind", seed.Config{Kind: "csv"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	src, err := seed.Open(ctx, seed.Config{Kind: seed.KindJSON, JSONPath: "testdata/seed.json"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &seed.FileSource{}, src)

	src, err = seed.Open(ctx, seed.Config{Kind: seed.KindSQLite, SQLitePath: t.TempDir() + "/x.db"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &seed.SQLiteSource{}, src)

	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err = seed.Open(ctx, seed.Config{Kind: seed.KindSheets, SpreadsheetID: "abc"}, nil)
	assert.Error(t, err, "sheets source needs credentials")
}
