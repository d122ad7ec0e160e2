package domain_test

import (
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modulePath = "github.com/reglet-dev/compute-bridge"

// TestDomainHasNoOuterDependencies verifies that the domain layer imports
// only the standard library and other domain packages. The engine, bridge
// and host adapters depend on the domain, never the reverse.
func TestDomainHasNoOuterDependencies(t *testing.T) {
	fset := token.NewFileSet()

	for _, pkg := range []string{"entities", "errors", "ports"} {
		files, err := filepath.Glob(filepath.Join(".", pkg, "*.go"))
		require.NoError(t, err, "failed to glob %s files", pkg)
		require.NotEmpty(t, files, "domain/%s should contain Go files", pkg)

		for _, file := range files {
			if strings.HasSuffix(file, "_test.go") {
				continue
			}
			checkFileImports(t, fset, file, pkg)
		}
	}
}

func checkFileImports(t *testing.T, fset *token.FileSet, filename, pkg string) {
	t.Helper()

	f, err := parser.ParseFile(fset, filename, nil, parser.ImportsOnly)
	require.NoError(t, err, "failed to parse %s", filename)

	for _, imp := range f.Imports {
		importPath := strings.Trim(imp.Path.Value, `"`)

		if strings.HasPrefix(importPath, modulePath) {
			assert.True(t, strings.HasPrefix(importPath, modulePath+"/domain/"),
				"domain/%s (%s) imports non-domain package %s",
				pkg, filepath.Base(filename), importPath)
			continue
		}

		// Anything else must be standard library: no dot in the first
		// path element.
		first := strings.SplitN(importPath, "/", 2)[0]
		assert.NotContains(t, first, ".",
			"domain/%s (%s) imports third-party package %s",
			pkg, filepath.Base(filename), importPath)
	}
}
