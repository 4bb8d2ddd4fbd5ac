package testutils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// Registry status codes, as used on the wire.
const (
	BlueprintDone       = 3
	BlueprintInProgress = 2
	ProofInProgress     = 1
	ProofDone           = 2
	ProofFailed         = 3
)

// FakeBlueprint is a blueprint served by Registry.
type FakeBlueprint struct {
	ID      uuid.UUID `json:"id"`
	Slug    string    `json:"slug"`
	Title   string    `json:"title"`
	Version int       `json:"version"`
	Status  int       `json:"status"`
	Vkey    []byte    `json:"-"`
}

// ProofRequest is a proof request received by Registry.
type ProofRequest struct {
	BlueprintID    uuid.UUID `json:"blueprint_id"`
	Input          string    `json:"input"`
	ExternalInputs []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"external_inputs"`
}

type fakeProof struct {
	ID          uuid.UUID       `json:"id"`
	BlueprintID uuid.UUID       `json:"blueprint_id"`
	Status      int             `json:"status"`
	ProofData   json.RawMessage `json:"proof,omitempty"`
	PublicData  json.RawMessage `json:"public,omitempty"`
	Error       string          `json:"error,omitempty"`

	pending int
}

// Registry is an in-memory zk-email registry served over HTTP.
type Registry struct {
	Server *httptest.Server

	// Token, if set, is the bearer token every request must carry.
	Token string
	// PendingPolls is how many status requests see a proof in progress
	// before it completes.
	PendingPolls int
	// FailReason, if set, makes every proof fail with this reason.
	FailReason string
	// ProofData and PublicData are returned by completed proofs.
	ProofData  json.RawMessage
	PublicData json.RawMessage
	// Indent, if set, pretty-prints proof responses with this indent.
	Indent string

	mu         sync.Mutex
	blueprints map[string]*FakeBlueprint
	proofs     map[uuid.UUID]*fakeProof
	requests   []ProofRequest
	polls      int
}

// NewRegistry starts a fake registry. Close it with Close.
func NewRegistry() *Registry {
	reg := &Registry{
		ProofData:  json.RawMessage(`{"pi_a":["1","2","1"],"protocol":"groth16"}`),
		PublicData: json.RawMessage(`["1","2"]`),
		blueprints: make(map[string]*FakeBlueprint),
		proofs:     make(map[uuid.UUID]*fakeProof),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /blueprint/by-slug/{owner}/{name}", reg.handleBlueprintBySlug)
	mux.HandleFunc("GET /blueprint/by-slug/{owner}/{name}/{version}", reg.handleBlueprintBySlug)
	mux.HandleFunc("GET /blueprint/{id}", reg.handleBlueprint)
	mux.HandleFunc("GET /blueprint/{id}/vkey", reg.handleVkey)
	mux.HandleFunc("POST /proof", reg.handleCreateProof)
	mux.HandleFunc("GET /proof/{id}", reg.handleProof)

	reg.Server = httptest.NewServer(reg.authenticate(mux))
	return reg
}

// URL is the base URL of the registry.
func (reg *Registry) URL() string {
	return reg.Server.URL
}

// Close shuts the server down.
func (reg *Registry) Close() {
	reg.Server.Close()
}

// AddBlueprint registers a compiled blueprint under slug ("owner/name") and
// version, and returns it.
func (reg *Registry) AddBlueprint(slug string, version int, vkey []byte) *FakeBlueprint {
	bp := &FakeBlueprint{
		ID:      uuid.New(),
		Slug:    slug,
		Title:   slug,
		Version: version,
		Status:  BlueprintDone,
		Vkey:    vkey,
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.blueprints[slug+"@v"+strconv.Itoa(version)] = bp
	if latest, ok := reg.blueprints[slug]; !ok || latest.Version < version {
		reg.blueprints[slug] = bp
	}
	return bp
}

// SetBlueprintStatus changes the status of the blueprint with id.
func (reg *Registry) SetBlueprintStatus(id uuid.UUID, status int) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for _, bp := range reg.blueprints {
		if bp.ID == id {
			bp.Status = status
		}
	}
}

// Requests returns the proof requests received so far.
func (reg *Registry) Requests() []ProofRequest {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return append([]ProofRequest(nil), reg.requests...)
}

// Polls returns how many proof status requests were served.
func (reg *Registry) Polls() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.polls
}

func (reg *Registry) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reg.Token != "" && r.Header.Get("Authorization") != "Bearer "+reg.Token {
			returnErrorJSON(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (reg *Registry) handleBlueprintBySlug(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("owner") + "/" + r.PathValue("name")
	if v := r.PathValue("version"); v != "" {
		key += "@v" + v
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()
	bp, ok := reg.blueprints[key]
	if !ok {
		returnErrorJSON(w, "blueprint not found", http.StatusNotFound)
		return
	}
	returnJSON(w, bp, http.StatusOK)
}

func (reg *Registry) blueprintByID(r *http.Request) (*FakeBlueprint, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return nil, false
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for _, bp := range reg.blueprints {
		if bp.ID == id {
			return bp, true
		}
	}
	return nil, false
}

func (reg *Registry) handleBlueprint(w http.ResponseWriter, r *http.Request) {
	bp, ok := reg.blueprintByID(r)
	if !ok {
		returnErrorJSON(w, "blueprint not found", http.StatusNotFound)
		return
	}
	returnJSON(w, bp, http.StatusOK)
}

func (reg *Registry) handleVkey(w http.ResponseWriter, r *http.Request) {
	bp, ok := reg.blueprintByID(r)
	if !ok || bp.Vkey == nil {
		returnErrorJSON(w, "verification key not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(bp.Vkey)
}

func (reg *Registry) handleCreateProof(w http.ResponseWriter, r *http.Request) {
	var req ProofRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		returnErrorJSON(w, "decoding request", http.StatusBadRequest)
		return
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	known := false
	for _, bp := range reg.blueprints {
		known = known || bp.ID == req.BlueprintID
	}
	if !known {
		returnErrorJSON(w, "blueprint not found", http.StatusNotFound)
		return
	}
	reg.requests = append(reg.requests, req)
	p := &fakeProof{
		ID:          uuid.New(),
		BlueprintID: req.BlueprintID,
		Status:      ProofInProgress,
		pending:     reg.PendingPolls,
	}
	reg.proofs[p.ID] = p
	returnIndentedJSON(w, p, http.StatusCreated, reg.Indent)
}

func (reg *Registry) handleProof(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		returnErrorJSON(w, "invalid proof id", http.StatusBadRequest)
		return
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	p, ok := reg.proofs[id]
	if !ok {
		returnErrorJSON(w, "proof not found", http.StatusNotFound)
		return
	}
	reg.polls++
	if p.Status == ProofInProgress {
		if p.pending > 0 {
			p.pending--
		} else if reg.FailReason != "" {
			p.Status = ProofFailed
			p.Error = reg.FailReason
		} else {
			p.Status = ProofDone
			p.ProofData = reg.ProofData
			p.PublicData = reg.PublicData
		}
	}
	returnIndentedJSON(w, p, http.StatusOK, reg.Indent)
}

func returnJSON(w http.ResponseWriter, resp interface{}, statusCode int) {
	returnIndentedJSON(w, resp, statusCode, "")
}

func returnIndentedJSON(w http.ResponseWriter, resp interface{}, statusCode int, indent string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	enc := json.NewEncoder(w)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	enc.Encode(resp)
}

func returnErrorJSON(w http.ResponseWriter, msg string, statusCode int) {
	returnJSON(w, map[string]interface{}{"error": msg}, statusCode)
}
