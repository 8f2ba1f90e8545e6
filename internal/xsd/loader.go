package xsd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vvka-141/xmlshred/pkg/xmlshred"
)

// LoadSet reads the entry schema file and follows its include/import chain
// recursively, relative to each including file. Documents are deduplicated
// by cleaned path and assigned handles in load order, so the set is
// deterministic for a given entry file.
//
// A missing referenced file is a degraded resolution, not a failure: the
// reference is logged and skipped so partially assembled schema sets still
// compile. Only an unreadable entry file is fatal.
func LoadSet(entryPath string, logger xmlshred.Logger) ([]*Document, error) {
	entry := filepath.Clean(entryPath)

	seen := map[string]bool{}
	var docs []*Document

	var load func(path string, required bool) error
	load = func(path string, required bool) error {
		path = filepath.Clean(path)
		if seen[path] {
			return nil
		}
		seen[path] = true

		f, err := os.Open(path)
		if err != nil {
			if !required {
				if logger != nil {
					logger.Verbose("skipping unreadable schema reference %s: %v", path, err)
				}
				return nil
			}
			if os.IsNotExist(err) {
				return fmt.Errorf("%s: %w", path, xmlshred.ErrSchemaNotFound)
			}
			return err
		}
		defer f.Close()

		doc, err := Parse(f, path)
		if err != nil {
			if !required {
				if logger != nil {
					logger.Verbose("skipping unparseable schema reference %s: %v", path, err)
				}
				return nil
			}
			return err
		}

		doc.Handle = len(docs)
		docs = append(docs, doc)
		if logger != nil {
			logger.Verbose("loaded schema %s (targetNamespace=%q, %d references)",
				path, doc.TargetNamespace, len(doc.References))
		}

		base := filepath.Dir(path)
		for _, ref := range doc.References {
			refPath := ref
			if !filepath.IsAbs(refPath) {
				refPath = filepath.Join(base, refPath)
			}
			if err := load(refPath, false); err != nil {
				return err
			}
		}
		return nil
	}

	if err := load(entry, true); err != nil {
		return nil, err
	}
	return docs, nil
}
