package sdk_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimidumo/zkresidency/sdk"
	"github.com/dimidumo/zkresidency/testutils"
)

const slug = "DimiDumo/SuccinctZKResidencyInvite"

func newSDK(reg *testutils.Registry, opts ...sdk.Option) *sdk.SDK {
	base := []sdk.Option{
		sdk.WithBaseURL(reg.URL()),
		sdk.WithPollInterval(10 * time.Millisecond),
	}
	return sdk.New(append(base, opts...)...)
}

func TestParseSlug(t *testing.T) {
	tests := []struct {
		slug    string
		name    string
		version int
		wantErr bool
	}{
		{slug: "DimiDumo/SuccinctZKResidencyInvite@v3", name: slug, version: 3},
		{slug: "DimiDumo/SuccinctZKResidencyInvite", name: slug},
		{slug: "owner/name@v12", name: "owner/name", version: 12},
		{slug: "owner/name@3", wantErr: true},
		{slug: "owner/name@v0", wantErr: true},
		{slug: "owner/name@vx", wantErr: true},
		{slug: "name@v1", wantErr: true},
		{slug: "/name", wantErr: true},
		{slug: "a/b/c", wantErr: true},
		{slug: "", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.slug, func(t *testing.T) {
			name, version, err := sdk.ParseSlug(tc.slug)
			if tc.wantErr {
				assert.ErrorIs(t, err, sdk.ErrInvalidSlug)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.name, name)
			assert.Equal(t, tc.version, version)
		})
	}
}

func TestGetBlueprint(t *testing.T) {
	reg := testutils.NewRegistry()
	defer reg.Close()
	v2 := reg.AddBlueprint(slug, 2, nil)
	v3 := reg.AddBlueprint(slug, 3, []byte(`{"protocol":"groth16"}`))
	s := newSDK(reg)
	ctx := context.Background()

	bp, err := s.GetBlueprint(ctx, slug+"@v2")
	require.NoError(t, err)
	assert.Equal(t, v2.ID, bp.ID)
	assert.Equal(t, 2, bp.Version)
	assert.Equal(t, sdk.BlueprintStatusDone, bp.Status)

	latest, err := s.GetBlueprint(ctx, slug)
	require.NoError(t, err)
	assert.Equal(t, v3.ID, latest.ID)

	byID, err := s.GetBlueprintByID(ctx, v3.ID)
	require.NoError(t, err)
	assert.Equal(t, slug, byID.Slug)

	vkey, err := latest.GetVkey(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"protocol":"groth16"}`, string(vkey))

	_, err = bp.GetVkey(ctx)
	assert.True(t, sdk.IsNotFound(err), "expected not found, got %v", err)
}

func TestGetBlueprintNotFound(t *testing.T) {
	reg := testutils.NewRegistry()
	defer reg.Close()
	s := newSDK(reg)

	_, err := s.GetBlueprint(context.Background(), "nobody/nothing@v1")
	require.Error(t, err)
	assert.True(t, sdk.IsNotFound(err))

	var apiErr *sdk.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "blueprint not found", apiErr.Message)

	_, err = s.GetBlueprintByID(context.Background(), uuid.New())
	assert.True(t, sdk.IsNotFound(err))
}

func TestAuthToken(t *testing.T) {
	reg := testutils.NewRegistry()
	defer reg.Close()
	reg.Token = "secret"
	reg.AddBlueprint(slug, 3, nil)

	_, err := newSDK(reg).GetBlueprint(context.Background(), slug)
	var apiErr *sdk.APIError
	require.True(t, errors.As(err, &apiErr), "expected APIError, got %v", err)
	assert.Equal(t, 401, apiErr.StatusCode)

	_, err = newSDK(reg, sdk.WithAuthToken("secret")).GetBlueprint(context.Background(), slug)
	assert.NoError(t, err)
}

func TestAuthTokenKeepsClientSettings(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		http.Redirect(w, r, "/moved", http.StatusFound)
	}))
	defer srv.Close()

	client := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	s := sdk.New(sdk.WithBaseURL(srv.URL), sdk.WithHTTPClient(client), sdk.WithAuthToken("secret"))

	_, err := s.GetBlueprint(context.Background(), slug)
	var apiErr *sdk.APIError
	require.True(t, errors.As(err, &apiErr), "expected APIError, got %v", err)
	assert.Equal(t, http.StatusFound, apiErr.StatusCode, "redirect policy of the caller's client was dropped")
	assert.Equal(t, "Bearer secret", auth)
	assert.Nil(t, client.Transport, "caller's client must not be modified")
}

func TestCreateProverNotCompiled(t *testing.T) {
	reg := testutils.NewRegistry()
	defer reg.Close()
	fake := reg.AddBlueprint(slug, 1, nil)
	reg.SetBlueprintStatus(fake.ID, testutils.BlueprintInProgress)

	bp, err := newSDK(reg).GetBlueprint(context.Background(), slug)
	require.NoError(t, err)
	_, err = bp.CreateProver()
	assert.ErrorIs(t, err, sdk.ErrBlueprintNotCompiled)
}

func TestGenerateProof(t *testing.T) {
	reg := testutils.NewRegistry()
	defer reg.Close()
	reg.PendingPolls = 2
	fake := reg.AddBlueprint(slug, 3, nil)

	bp, err := newSDK(reg).GetBlueprint(context.Background(), slug+"@v3")
	require.NoError(t, err)
	prover, err := bp.CreateProver(sdk.WithExternalInputs(
		sdk.ExternalInput{Name: "address", Value: "0xabc"},
	))
	require.NoError(t, err)
	assert.Same(t, bp, prover.Blueprint())

	proof, err := prover.GenerateProof(context.Background(), []byte(testutils.SampleEmail))
	require.NoError(t, err)
	assert.Equal(t, sdk.ProofStatusDone, proof.Status)
	assert.Equal(t, fake.ID, proof.BlueprintID)

	proofData, publicData := proof.GetProofData()
	assert.JSONEq(t, string(reg.ProofData), string(proofData))
	assert.JSONEq(t, string(reg.PublicData), string(publicData))
	assert.Equal(t, 3, reg.Polls())

	requests := reg.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, testutils.SampleEmail, requests[0].Input)
	require.Len(t, requests[0].ExternalInputs, 1)
	assert.Equal(t, "address", requests[0].ExternalInputs[0].Name)
	assert.Equal(t, "0xabc", requests[0].ExternalInputs[0].Value)

	got, err := newSDK(reg).GetProof(context.Background(), proof.ID)
	require.NoError(t, err)
	assert.Equal(t, sdk.ProofStatusDone, got.Status)
}

func TestGenerateProofFailed(t *testing.T) {
	reg := testutils.NewRegistry()
	defer reg.Close()
	reg.FailReason = "DKIM signature does not verify"
	reg.AddBlueprint(slug, 3, nil)

	bp, err := newSDK(reg).GetBlueprint(context.Background(), slug)
	require.NoError(t, err)
	prover, err := bp.CreateProver()
	require.NoError(t, err)

	_, err = prover.GenerateProof(context.Background(), []byte(testutils.SampleEmail))
	require.ErrorIs(t, err, sdk.ErrProofFailed)
	var failed *sdk.ProofFailedError
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, reg.FailReason, failed.Reason)
	assert.Contains(t, err.Error(), reg.FailReason)
}

func TestGenerateProofIncomplete(t *testing.T) {
	reg := testutils.NewRegistry()
	defer reg.Close()
	reg.PublicData = nil
	reg.AddBlueprint(slug, 3, nil)

	bp, err := newSDK(reg).GetBlueprint(context.Background(), slug)
	require.NoError(t, err)
	prover, err := bp.CreateProver()
	require.NoError(t, err)

	_, err = prover.GenerateProof(context.Background(), []byte(testutils.SampleEmail))
	assert.ErrorIs(t, err, sdk.ErrIncompleteProof)
}

func TestGenerateProofTimeout(t *testing.T) {
	reg := testutils.NewRegistry()
	defer reg.Close()
	reg.PendingPolls = 1 << 20
	reg.AddBlueprint(slug, 3, nil)

	bp, err := newSDK(reg).GetBlueprint(context.Background(), slug)
	require.NoError(t, err)
	prover, err := bp.CreateProver()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = prover.GenerateProof(ctx, []byte(testutils.SampleEmail))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGenerateProofRejectsInvalidEmail(t *testing.T) {
	reg := testutils.NewRegistry()
	defer reg.Close()
	reg.AddBlueprint(slug, 3, nil)

	bp, err := newSDK(reg).GetBlueprint(context.Background(), slug)
	require.NoError(t, err)
	prover, err := bp.CreateProver()
	require.NoError(t, err)

	_, err = prover.GenerateProof(context.Background(), nil)
	assert.ErrorIs(t, err, sdk.ErrEmptyEmail)
	assert.Empty(t, reg.Requests(), "invalid emails must not reach the prover")
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name string
		eml  string
		err  error
	}{
		{name: "valid", eml: testutils.SampleEmail},
		{name: "empty", eml: " \r\n", err: sdk.ErrEmptyEmail},
		{name: "no headers", eml: "just some text", err: sdk.ErrMalformedEmail},
		{
			name: "no body separator",
			eml:  "DKIM-Signature: v=1; d=example.com\r\nFrom: a@example.com\r\nSubject: hi",
			err:  sdk.ErrMalformedEmail,
		},
		{
			name: "lf line endings",
			eml:  "DKIM-Signature: v=1; d=example.com\nFrom: a@example.com\n\nbody\n",
		},
		{
			name: "unsigned",
			eml:  "From: a@example.com\r\nSubject: hi\r\n\r\nbody\r\n",
			err:  sdk.ErrNoDKIMSignature,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := sdk.ValidateEmail([]byte(tc.eml))
			if tc.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "done", sdk.BlueprintStatusDone.String())
	assert.Equal(t, "in progress", sdk.ProofStatusInProgress.String())
	assert.Equal(t, "unknown(9)", sdk.ProofStatus(9).String())
}

func TestNewDefaults(t *testing.T) {
	assert.Equal(t, sdk.DefaultBaseURL, sdk.New().BaseURL())
	assert.Equal(t, "http://localhost:8080", sdk.New(sdk.WithBaseURL("http://localhost:8080/")).BaseURL())
}
