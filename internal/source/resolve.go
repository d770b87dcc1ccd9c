package source

import (
	"path"
	"strings"
)

// probeExtensions lists the suffixes tried when resolving a relative import
// specifier to an analyzed file, in priority order.
var probeExtensions = []string{
	"", ".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs",
	"/index.ts", "/index.tsx", "/index.js",
}

// followImport resolves an import binding to the exported declaration in the
// target file. Bare specifiers (external packages) and namespace imports stay
// unresolved.
func (a *Analyzer) followImport(fromPath string, ref importRef) *construct {
	if ref.namespace || ref.imported == "" {
		return nil
	}
	if !strings.HasPrefix(ref.specifier, ".") {
		return nil
	}
	base := path.Join(path.Dir(fromPath), ref.specifier)
	target := a.probeFile(base)
	if target == nil {
		return nil
	}
	return target.exports[ref.imported]
}

// probeFile finds the analyzed file a specifier points at, trying the
// specifier verbatim, with each extension, then as a directory index.
func (a *Analyzer) probeFile(base string) *fileIndex {
	for _, ext := range probeExtensions {
		if idx, ok := a.files[base+ext]; ok {
			return idx
		}
	}
	return nil
}
