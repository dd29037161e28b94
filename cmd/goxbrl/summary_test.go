package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	xbrl "github.com/RxDataLab/go-xbrl"
	"github.com/RxDataLab/go-xbrl/webcache"
)

const importingSchema = `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:a">
  <xs:import namespace="urn:b" schemaLocation="b.xsd"/>
  <xs:element name="x" type="xs:string"/>
</xs:schema>`

const importedSchema = `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:b">
  <xs:element name="y" type="xs:string"/>
</xs:schema>`

func TestSummarizeSession(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.xsd"), []byte(importingSchema), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.xsd"), []byte(importedSchema), 0o644))

	s := xbrl.NewSession(xbrl.Options{
		Resolver: webcache.New(webcache.Config{Dir: t.TempDir(), WorkOffline: true}),
		Logger:   zaptest.NewLogger(t),
	})
	defer s.Close()
	entry := filepath.Join(dir, "a.xsd")
	doc, err := s.Load(context.Background(), entry, xbrl.LoadRequest{IsEntry: true})
	require.NoError(t, err)

	summary := summarizeSession(entry, s, doc)
	assert.Equal(t, xbrl.Schema, summary.Type)
	assert.Equal(t, 2, summary.Concepts)
	require.Len(t, summary.Documents, 2)

	var refs map[string][]string
	for _, d := range summary.Documents {
		if d.URI == entry {
			refs = d.References
		}
	}
	assert.Equal(t, []string{filepath.Join(dir, "b.xsd")}, refs[xbrl.RefImport])

	data, err := json.Marshal(summary)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "schema", decoded["type"])
	assert.NotContains(t, decoded, "error")
}

func TestSummarizeResultError(t *testing.T) {
	r := &xbrl.BatchResult{
		URI: "missing.xsd",
		Err: errors.New("failed to load missing.xsd"),
		Diagnostics: xbrl.Diagnostics{
			{Level: xbrl.LevelError, Kind: xbrl.KindUnfetchable, Code: "FileNotLoadable", Message: "file can not be loaded"},
		},
	}
	summary := summarizeResult(r)
	assert.Equal(t, "failed to load missing.xsd", summary.Error)
	require.Len(t, summary.Diagnostics, 1)
	assert.Equal(t, "FileNotLoadable", summary.Diagnostics[0].Code)
	assert.Equal(t, xbrl.LevelError.String(), summary.Diagnostics[0].Level)
}
