package sink

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (u *fakeUploader) Upload(ctx context.Context, input *s3.PutObjectInput,
	opts ...func(*manager.Uploader)) (*manager.UploadOutput, error) {

	if u.err != nil {
		return nil, u.err
	}
	body, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	u.inputs = append(u.inputs, input)
	u.bodies = append(u.bodies, body)
	return &manager.UploadOutput{
		Location: "https://" + *input.Bucket + ".s3.amazonaws.com/" + *input.Key,
	}, nil
}

func TestFileSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "nested")
	s := NewFileSink(dir)

	require.NoError(t, s.Store(context.Background(), "proofData.json", []byte(`{"a":1}`)))
	data, err := os.ReadFile(filepath.Join(dir, "proofData.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))

	for _, name := range []string{"", ".", "..", "../escape.json", "a/b.json"} {
		assert.Error(t, s.Store(context.Background(), name, nil), "name %q", name)
	}
}

func TestConsoleSink(t *testing.T) {
	var out bytes.Buffer
	s := NewConsoleSink(&out, zerolog.Nop())
	require.NoError(t, s.Store(context.Background(), "publicData.json", []byte(`["1","2"]`)))
	assert.Equal(t, "publicData.json: [\"1\",\"2\"]\n", out.String())
}

func TestS3Sink(t *testing.T) {
	u := &fakeUploader{}
	s := NewS3SinkWithUploader(u, "proofs", "residency/run-1", zerolog.Nop())

	assert.Equal(t, "residency/run-1/proofData.json", s.Key("proofData.json"))
	require.NoError(t, s.Store(context.Background(), "proofData.json", []byte(`{}`)))
	require.Len(t, u.inputs, 1)
	assert.Equal(t, "proofs", *u.inputs[0].Bucket)
	assert.Equal(t, "residency/run-1/proofData.json", *u.inputs[0].Key)
	assert.Equal(t, "application/json", *u.inputs[0].ContentType)
	assert.Equal(t, "{}", string(u.bodies[0]))

	u.err = errors.New("access denied")
	err := s.Store(context.Background(), "publicData.json", []byte(`[]`))
	assert.ErrorContains(t, err, "access denied")
	assert.ErrorContains(t, err, "s3://proofs/residency/run-1/publicData.json")
}

func TestNewS3SinkRequiresBucket(t *testing.T) {
	_, err := NewS3Sink(context.Background(), "", "", zerolog.Nop())
	assert.Error(t, err)
}

func TestMulti(t *testing.T) {
	var out bytes.Buffer
	u := &fakeUploader{err: errors.New("unreachable")}
	m := Multi(NewConsoleSink(&out, zerolog.Nop()), NewS3SinkWithUploader(u, "b", "", zerolog.Nop()))

	err := m.Store(context.Background(), "proofData.json", []byte(`{}`))
	assert.Error(t, err)
	assert.Equal(t, "proofData.json: {}\n", out.String(), "sinks before the failing one still store")

	assert.NoError(t, Multi().Store(context.Background(), "proofData.json", nil))
}
