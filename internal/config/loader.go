package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"db-refcheck/internal/errs"
	"db-refcheck/internal/logger"
)

// IncludeTag splices another rules file into the document. In a sequence
// the included sequence (or the included document's references list) is
// inlined item by item; anywhere else the node is replaced.
const IncludeTag = "!include"

// DefaultFileName is the rules file used when no version-specific one exists.
const DefaultFileName = "references.yml"

// Locate returns the rules file for a host platform version within dir,
// trying references-<major>.<minor>.yml, references-<major>.yml and then
// references.yml.
func Locate(dir, version string) (string, error) {
	var candidates []string
	parts := strings.Split(strings.TrimSpace(version), ".")
	if len(parts) >= 2 && parts[0] != "" {
		candidates = append(candidates, fmt.Sprintf("references-%s.%s.yml", parts[0], parts[1]))
	}
	if parts[0] != "" {
		candidates = append(candidates, fmt.Sprintf("references-%s.yml", parts[0]))
	}
	candidates = append(candidates, DefaultFileName)

	for _, c := range candidates {
		p := filepath.Join(dir, c)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, nil
		}
	}
	return "", errs.Newf(errs.ErrKindConfig, "no rules file for version %q in %s", version, dir)
}

// Load reads a rules document, resolving includes relative to the
// including file.
func Load(path string) (*Configuration, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConfig, "invalid rules path", err)
	}
	root, err := loadNode(abs, nil)
	if err != nil {
		return nil, err
	}
	cfg, err := decode(root)
	if err != nil {
		return nil, err
	}
	logger.L().Infof("Loaded %d reference rules from %s", len(cfg.References), path)
	return cfg, nil
}

// Parse decodes a rules document held in memory. Includes are resolved
// against baseDir.
func Parse(data []byte, baseDir string) (*Configuration, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errs.Wrap(errs.ErrKindConfig, "malformed rules document", err)
	}
	root := documentRoot(&doc)
	if root == nil {
		return &Configuration{}, nil
	}
	if err := resolveIncludes(root, baseDir, nil); err != nil {
		return nil, err
	}
	return decode(root)
}

func decode(root *yaml.Node) (*Configuration, error) {
	cfg := &Configuration{}
	if root == nil {
		return cfg, nil
	}
	if err := root.Decode(cfg); err != nil {
		return nil, errs.Wrap(errs.ErrKindConfig, "invalid rules document", err)
	}
	return cfg, nil
}

func loadNode(path string, stack []string) (*yaml.Node, error) {
	for _, p := range stack {
		if p == path {
			return nil, errs.Newf(errs.ErrKindConfig, "include cycle: %s", strings.Join(append(stack, path), " -> "))
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConfig, "cannot read rules file", err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errs.Wrap(errs.ErrKindConfig, fmt.Sprintf("malformed rules file %s", path), err)
	}
	root := documentRoot(&doc)
	if root == nil {
		return nil, nil
	}
	if err := resolveIncludes(root, filepath.Dir(path), append(stack, path)); err != nil {
		return nil, err
	}
	return root, nil
}

func documentRoot(doc *yaml.Node) *yaml.Node {
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return nil
		}
		return doc.Content[0]
	}
	return doc
}

func resolveIncludes(n *yaml.Node, baseDir string, stack []string) error {
	switch n.Kind {
	case yaml.SequenceNode:
		var items []*yaml.Node
		for _, item := range n.Content {
			if item.Tag != IncludeTag {
				if err := resolveIncludes(item, baseDir, stack); err != nil {
					return err
				}
				items = append(items, item)
				continue
			}
			inc, err := include(item, baseDir, stack)
			if err != nil {
				return err
			}
			items = append(items, spliceable(inc)...)
		}
		n.Content = items

	case yaml.MappingNode:
		for i := 1; i < len(n.Content); i += 2 {
			v := n.Content[i]
			if v.Tag != IncludeTag {
				if err := resolveIncludes(v, baseDir, stack); err != nil {
					return err
				}
				continue
			}
			inc, err := include(v, baseDir, stack)
			if err != nil {
				return err
			}
			if inc == nil {
				inc = &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
			}
			if inc.Kind == yaml.MappingNode && n.Content[i-1].Value == "references" {
				if refs := referencesOf(inc); refs != nil {
					inc = refs
				}
			}
			n.Content[i] = inc
		}
	}
	return nil
}

func include(n *yaml.Node, baseDir string, stack []string) (*yaml.Node, error) {
	target := strings.TrimSpace(n.Value)
	if target == "" {
		return nil, errs.Newf(errs.ErrKindConfig, "line %d: %s needs a file name", n.Line, IncludeTag)
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(baseDir, target)
	}
	logger.L().Debugf("Including rules file %s", target)
	return loadNode(target, stack)
}

// spliceable returns the items an included document contributes to a sequence.
func spliceable(inc *yaml.Node) []*yaml.Node {
	if inc == nil {
		return nil
	}
	switch inc.Kind {
	case yaml.SequenceNode:
		return inc.Content
	case yaml.MappingNode:
		if refs := referencesOf(inc); refs != nil {
			return refs.Content
		}
	}
	return []*yaml.Node{inc}
}

func referencesOf(m *yaml.Node) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == "references" && m.Content[i+1].Kind == yaml.SequenceNode {
			return m.Content[i+1]
		}
	}
	return nil
}
