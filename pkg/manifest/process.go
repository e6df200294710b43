package manifest

import (
	"context"
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/Infineon/mtb-manifest-checker/pkg/assetcache"
	"github.com/Infineon/mtb-manifest-checker/pkg/logger"
	"github.com/Infineon/mtb-manifest-checker/pkg/uri"
)

// Process validates the manifest at input as type t and writes its normalized
// copy to output. The first failure aborts the manifest and is returned
// wrapped in a *ProcessError; asset cache writes made before it are kept.
func Process(ctx context.Context, s *Session, t Type, input, output string) error {
	r := &run{ctx: ctx, s: s}

	var fn func(*etree.Element) error
	switch t {
	case TypeSuper:
		fn = r.super
	case TypeBoard, TypeApp, TypeMiddleware:
		kind := assetKinds[t]
		fn = func(root *etree.Element) error { return r.assets(root, kind) }
	case TypeDependency:
		fn = r.dependency
	default:
		return &UnknownTypeError{Type: string(t)}
	}

	logger.Debug("processing manifest", logger.String("type", string(t)), logger.String("input", input))
	err := Rewrite(input, output, fn)

	rec := Record{
		Type:        t,
		Input:       input,
		Output:      output,
		Entries:     r.entries,
		RefsChecked: r.refs,
		Status:      StatusDone,
	}
	if err != nil {
		rec.Status = StatusFailed
		rec.Error = err.Error()
	}
	s.records = append(s.records, rec)

	if err != nil {
		return &ProcessError{Type: t, Input: input, Err: err}
	}
	return nil
}

// run carries the per-manifest counters.
type run struct {
	ctx     context.Context
	s       *Session
	entries int
	refs    int
}

func (r *run) checkRef(repo, ref string) error {
	r.refs++
	res, err := r.s.Refs.CheckRef(r.ctx, repo, ref)
	if err != nil {
		return err
	}
	if !res.Found {
		return &RefNotFoundError{Ref: ref, Repo: repo}
	}
	return nil
}

func (r *run) assets(root *etree.Element, kind elementKind) error {
	for _, el := range root.SelectElements(kind.tag) {
		if err := r.asset(el, kind.uriTag); err != nil {
			return err
		}
	}
	return nil
}

// asset registers one board/app/middleware entry and checks its version commits.
func (r *run) asset(el *etree.Element, uriTag string) error {
	r.entries++
	id, err := childText(el, "id", "")
	if err != nil {
		return err
	}
	repo, err := childText(el, uriTag, id)
	if err != nil {
		return err
	}
	logger.Info(fmt.Sprintf("Validate manifest [<id> <%s>]: %s %s", uriTag, id, repo))

	if _, err := uri.ParseRepoURI(repo); err != nil {
		return err
	}
	r.s.Assets.Put(id, repo)

	for _, version := range versions(el) {
		commit, err := childText(version, "commit", id)
		if err != nil {
			return err
		}
		if err := r.checkRef(repo, commit); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) super(root *etree.Element) error {
	for _, l := range superLists {
		list := root.SelectElement(l.list)
		if list == nil {
			continue
		}
		for _, entry := range list.SelectElements(l.entry) {
			r.entries++
			raw, err := childText(entry, "uri", "")
			if err != nil {
				return err
			}
			logger.Info(fmt.Sprintf("Validate super manifest [<uri>]: %s", raw))
			if err := r.checkRaw(raw); err != nil {
				return err
			}

			if attr := entry.SelectAttr("dependency-url"); attr != nil {
				dep := strings.TrimSpace(attr.Value)
				logger.Info(fmt.Sprintf("Validate super manifest [<dependency-url>]: %s", dep))
				if err := r.checkRaw(dep); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// checkRaw verifies a raw manifest URL: reachable first, then the ref it
// embeds must exist in the repository it names.
func (r *run) checkRaw(raw string) error {
	if !r.s.Remote.CheckReachable(r.ctx, raw) {
		return &UnreachableError{URL: raw}
	}
	parsed, err := uri.ParseRawURI(raw)
	if err != nil {
		return err
	}
	if err := parsed.Validate(); err != nil {
		return err
	}
	return r.checkRef(parsed.Repo, parsed.Ref)
}

func (r *run) dependency(root *etree.Element) error {
	for _, depender := range root.SelectElements("depender") {
		r.entries++
		id, err := childText(depender, "id", "")
		if err != nil {
			return err
		}
		repo, ok := r.s.Assets.Get(id)
		logger.Info(fmt.Sprintf("Validate dependency manifest [<depender> <id>=(uri)]: %s %s", id, repo))
		if !ok {
			return r.lookupError(id, "depender")
		}

		for _, version := range versions(depender) {
			commit, err := childText(version, "commit", id)
			if err != nil {
				return err
			}
			if err := r.checkRef(repo, commit); err != nil {
				return err
			}
			if err := r.dependees(version, id); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *run) dependees(version *etree.Element, depender string) error {
	list := version.SelectElement("dependees")
	if list == nil {
		return nil
	}
	for _, dependee := range list.SelectElements("dependee") {
		id, err := childText(dependee, "id", depender)
		if err != nil {
			return err
		}
		repo, ok := r.s.Assets.Get(id)
		logger.Info(fmt.Sprintf("Validate dependency manifest [<dependee> <id>=(uri)]: %s %s", id, repo))
		if !ok {
			return r.lookupError(id, "dependee")
		}
		commit, err := childText(dependee, "commit", id)
		if err != nil {
			return err
		}
		if err := r.checkRef(repo, commit); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) lookupError(id, role string) error {
	path := r.s.CachePath
	if path == "" {
		path = assetcache.DefaultPath
	}
	return &LookupError{
		ID:   id,
		Role: role,
		Hint: fmt.Sprintf("perhaps seed the '%s' file", path),
	}
}

func versions(el *etree.Element) []*etree.Element {
	v := el.SelectElement("versions")
	if v == nil {
		return nil
	}
	return v.SelectElements("version")
}

// childText returns the trimmed text of parent's first tag child. A missing or
// empty child is an *ElementError.
func childText(parent *etree.Element, tag, id string) (string, error) {
	child := parent.SelectElement(tag)
	if child == nil {
		return "", &ElementError{Parent: parent.Tag, Element: tag, ID: id}
	}
	text := strings.TrimSpace(child.Text())
	if text == "" {
		return "", &ElementError{Parent: parent.Tag, Element: tag, ID: id}
	}
	return text, nil
}
