package sdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// BlueprintStatus is the compilation state of a blueprint in the registry.
type BlueprintStatus int

const (
	BlueprintStatusNone BlueprintStatus = iota
	BlueprintStatusDraft
	BlueprintStatusInProgress
	BlueprintStatusDone
	BlueprintStatusFailed
)

func (s BlueprintStatus) String() string {
	switch s {
	case BlueprintStatusNone:
		return "none"
	case BlueprintStatusDraft:
		return "draft"
	case BlueprintStatusInProgress:
		return "in progress"
	case BlueprintStatusDone:
		return "done"
	case BlueprintStatusFailed:
		return "failed"
	}
	return "unknown(" + strconv.Itoa(int(s)) + ")"
}

// Blueprint identifies the circuit a proof is generated with.
type Blueprint struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Slug        string          `json:"slug"`
	Version     int             `json:"version"`
	Status      BlueprintStatus `json:"status"`
	CircuitName string          `json:"circuit_name"`
	EmailQuery  string          `json:"email_query"`

	sdk *SDK
}

// ParseSlug splits a slug of the form "owner/name@vN" into its name
// ("owner/name") and version. The "@vN" suffix is optional, in which case
// version is 0 and the latest version is meant.
func ParseSlug(slug string) (name string, version int, err error) {
	name = slug
	if i := strings.LastIndex(slug, "@"); i >= 0 {
		name = slug[:i]
		v, ok := strings.CutPrefix(slug[i+1:], "v")
		if !ok {
			return "", 0, errors.Wrapf(ErrInvalidSlug, "%q: version must look like @v1", slug)
		}
		version, err = strconv.Atoi(v)
		if err != nil || version < 1 {
			return "", 0, errors.Wrapf(ErrInvalidSlug, "%q: bad version %q", slug, v)
		}
	}
	owner, repo, ok := strings.Cut(name, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", 0, errors.Wrapf(ErrInvalidSlug, "%q: expected owner/name", slug)
	}
	return name, version, nil
}

// GetBlueprint fetches a blueprint by its slug.
func (s *SDK) GetBlueprint(ctx context.Context, slug string) (*Blueprint, error) {
	name, version, err := ParseSlug(slug)
	if err != nil {
		return nil, err
	}
	owner, repo, _ := strings.Cut(name, "/")
	path := "/blueprint/by-slug/" + url.PathEscape(owner) + "/" + url.PathEscape(repo)
	if version > 0 {
		path += "/" + strconv.Itoa(version)
	}

	var bp Blueprint
	if err := s.do(ctx, http.MethodGet, path, nil, &bp); err != nil {
		return nil, errors.Wrapf(err, "getting blueprint %s", slug)
	}
	if bp.Slug == "" {
		bp.Slug = name
	}
	bp.sdk = s
	s.logger.Debug().
		Str("slug", slug).
		Stringer("blueprint_id", bp.ID).
		Stringer("status", bp.Status).
		Msg("blueprint resolved")
	return &bp, nil
}

// GetBlueprintByID fetches a blueprint by its registry id.
func (s *SDK) GetBlueprintByID(ctx context.Context, id uuid.UUID) (*Blueprint, error) {
	var bp Blueprint
	if err := s.do(ctx, http.MethodGet, "/blueprint/"+id.String(), nil, &bp); err != nil {
		return nil, errors.Wrapf(err, "getting blueprint %s", id)
	}
	bp.sdk = s
	return &bp, nil
}

// GetVkey downloads the snarkjs verification key of the blueprint circuit.
func (b *Blueprint) GetVkey(ctx context.Context) ([]byte, error) {
	var vkey []byte
	path := "/blueprint/" + b.ID.String() + "/vkey"
	if err := b.sdk.do(ctx, http.MethodGet, path, nil, &vkey); err != nil {
		return nil, errors.Wrapf(err, "getting verification key of %s", b.Slug)
	}
	if !json.Valid(vkey) {
		return nil, errors.Errorf("verification key of %s is not valid JSON", b.Slug)
	}
	return vkey, nil
}

// CreateProver returns a prover for the blueprint. Only compiled blueprints
// can prove.
func (b *Blueprint) CreateProver(opts ...ProverOption) (*Prover, error) {
	if b.Status != BlueprintStatusDone {
		return nil, errors.Wrapf(ErrBlueprintNotCompiled, "blueprint %s is %s",
			b.Slug, b.Status)
	}
	p := &Prover{blueprint: b}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}
