package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-rank/internal/llm"
	"resume-rank/internal/storage"
)

type stubStore struct {
	resumes      []*storage.Resume
	listErr      error
	insertedID   int
	markedFailed map[int]string
	updated      map[int]*llm.Profile
	byIDsArg     []int
}

func newStubStore(resumes ...*storage.Resume) *stubStore {
	return &stubStore{
		resumes:      resumes,
		insertedID:   1,
		markedFailed: map[int]string{},
		updated:      map[int]*llm.Profile{},
	}
}

func (s *stubStore) InsertResume(ctx context.Context, filename, filePath string) (int, error) {
	s.resumes = append(s.resumes, &storage.Resume{ID: s.insertedID, Filename: filename, FilePath: filePath})
	return s.insertedID, nil
}

func (s *stubStore) UpdateProfile(ctx context.Context, id int, p *llm.Profile) error {
	s.updated[id] = p
	return nil
}

func (s *stubStore) MarkParseFailed(ctx context.Context, id int, reason string) error {
	s.markedFailed[id] = reason
	return nil
}

func (s *stubStore) GetResume(ctx context.Context, id int) (*storage.Resume, error) {
	for _, r := range s.resumes {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, errors.New("not found")
}

func (s *stubStore) ListResumes(ctx context.Context) ([]*storage.Resume, error) {
	return s.resumes, s.listErr
}

func (s *stubStore) ListResumesByIDs(ctx context.Context, ids []int) ([]*storage.Resume, error) {
	s.byIDsArg = ids
	var out []*storage.Resume
	for _, id := range ids {
		for _, r := range s.resumes {
			if r.ID == id {
				out = append(out, r)
			}
		}
	}
	return out, s.listErr
}

type stubUploader struct{}

func (stubUploader) SaveUpload(filename string, r io.Reader) (string, int64, error) {
	n, err := io.Copy(io.Discard, r)
	return "/tmp/uploads/" + filename, n, err
}

type stubPipeline struct {
	profile    *llm.Profile
	extractErr error
	ranking    *llm.Ranking
	rankErr    error
	rankedRole string
}

func (s *stubPipeline) ExtractProfile(ctx context.Context, rec storage.Resume) (*llm.Profile, error) {
	return s.profile, s.extractErr
}

func (s *stubPipeline) Rank(ctx context.Context, role string, recs []*storage.Resume) (*llm.Ranking, error) {
	s.rankedRole = role
	return s.ranking, s.rankErr
}

func newTestAPI(store *stubStore, pipeline *stubPipeline) *API {
	return NewAPI(store, stubUploader{}, pipeline, nil)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func multipartUpload(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/resumes/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadResumeSuccess(t *testing.T) {
	store := newStubStore()
	pipeline := &stubPipeline{profile: &llm.Profile{
		Name: "Jane Doe", Email: "jane@example.com", SkillsText: "Python, SQL",
	}}
	a := newTestAPI(store, pipeline)

	rec := httptest.NewRecorder()
	a.UploadResumeHandler(rec, multipartUpload(t, "jane.txt", "Jane Doe, jane@example.com"))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["is_parsed"])
	assert.Equal(t, "jane.txt", body["filename"])
	require.Contains(t, body, "profile")

	require.Contains(t, store.updated, 1, "extracted profile must be persisted")
	assert.Equal(t, "Jane Doe", store.updated[1].Name)
}

func TestUploadResumeRejectsUnsupportedExtension(t *testing.T) {
	a := newTestAPI(newStubStore(), &stubPipeline{})

	rec := httptest.NewRecorder()
	a.UploadResumeHandler(rec, multipartUpload(t, "malware.exe", "x"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
}

func TestUploadResumeExtractionFailureIsNotAServerError(t *testing.T) {
	store := newStubStore()
	pipeline := &stubPipeline{
		extractErr: llm.NewFailure(llm.KindNoExtractableText, "no text could be extracted from jane.pdf"),
	}
	a := newTestAPI(store, pipeline)

	rec := httptest.NewRecorder()
	a.UploadResumeHandler(rec, multipartUpload(t, "jane.pdf", "binary"))

	// The upload itself succeeded; only the parse failed.
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, false, body["is_parsed"])
	assert.Contains(t, body["parse_error"], "no_extractable_text")

	require.Contains(t, store.markedFailed, 1)
	assert.Contains(t, store.markedFailed[1], "no_extractable_text")
	assert.Empty(t, store.updated)
}

func TestListResumes(t *testing.T) {
	store := newStubStore(
		&storage.Resume{ID: 1, Filename: "a.pdf"},
		&storage.Resume{ID: 2, Filename: "b.txt"},
	)
	a := newTestAPI(store, &stubPipeline{})

	rec := httptest.NewRecorder()
	a.ListResumesHandler(rec, httptest.NewRequest(http.MethodGet, "/api/resumes", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["resumes"], 2)
}

func rankCall(t *testing.T, a *API, payload string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/resumes/rank", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.RankResumesHandler(rec, req)
	return rec
}

func TestRankResumesSuccess(t *testing.T) {
	store := newStubStore(
		&storage.Resume{ID: 1, Filename: "bob.txt"},
		&storage.Resume{ID: 2, Filename: "alice.txt"},
	)
	pipeline := &stubPipeline{ranking: &llm.Ranking{
		JobRole: "Backend Engineer",
		Entries: []llm.RankingEntry{
			{ResumeID: 2, Name: "Alice", MatchScore: 90, ResumeFilename: "alice.txt"},
			{ResumeID: 1, Name: "Bob", MatchScore: 70, ResumeFilename: "bob.txt"},
		},
	}}
	a := newTestAPI(store, pipeline)

	rec := rankCall(t, a, `{"job_role":"Backend Engineer"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Backend Engineer", pipeline.rankedRole)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	ranked := body["ranked_resumes"].([]any)
	require.Len(t, ranked, 2)
	assert.Equal(t, float64(2), ranked[0].(map[string]any)["resume_id"])
}

func TestRankResumesFiltersByIDs(t *testing.T) {
	store := newStubStore(
		&storage.Resume{ID: 1, Filename: "bob.txt"},
		&storage.Resume{ID: 2, Filename: "alice.txt"},
	)
	pipeline := &stubPipeline{ranking: &llm.Ranking{Entries: []llm.RankingEntry{}}}
	a := newTestAPI(store, pipeline)

	rec := rankCall(t, a, `{"job_role":"Backend Engineer","resume_ids":[2]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int{2}, store.byIDsArg)
}

func TestRankResumesRequiresJobRole(t *testing.T) {
	a := newTestAPI(newStubStore(), &stubPipeline{})

	rec := rankCall(t, a, `{"job_role":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = rankCall(t, a, `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRankResumesNoResumesStored(t *testing.T) {
	a := newTestAPI(newStubStore(), &stubPipeline{})

	rec := rankCall(t, a, `{"job_role":"Backend Engineer"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRankResumesErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "no rankable documents",
			err:        llm.NewFailure(llm.KindNoRankableDocuments, "could not extract text from any of 3 resumes"),
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "rate limited",
			err:        llm.NewFailure(llm.KindRateLimited, "gemini rate limit (429)"),
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name: "retry budget exhausted on rate limit",
			err: &llm.Failure{
				Kind:   llm.KindRetryBudgetExhausted,
				Detail: "gave up after 5 attempts",
				Err:    llm.NewFailure(llm.KindRateLimited, "gemini rate limit (429)"),
			},
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "malformed response",
			err:        llm.NewFailure(llm.KindMalformedResponse, "reply was successful but contained no content"),
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "upstream error",
			err:        llm.NewFailure(llm.KindUpstreamError, "gemini status 500: backend error"),
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "plain error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newStubStore(&storage.Resume{ID: 1, Filename: "a.txt"})
			a := newTestAPI(store, &stubPipeline{rankErr: tc.err})

			rec := rankCall(t, a, `{"job_role":"Backend Engineer"}`)
			assert.Equal(t, tc.wantStatus, rec.Code)

			body := decodeBody(t, rec)
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestRouterRoutes(t *testing.T) {
	a := newTestAPI(newStubStore(), &stubPipeline{})
	srv := httptest.NewServer(NewRouter(a))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, err := http.Get(srv.URL + "/api/resumes")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}
