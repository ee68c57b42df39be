package rules

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFile struct {
	name       string
	ext        string
	size       int64
	path       string
	modifiedAt time.Time
	createdAt  time.Time
	mimeType   string
	hidden     bool
}

func (f fakeFile) Name() string          { return f.name }
func (f fakeFile) Ext() string           { return f.ext }
func (f fakeFile) Size() int64           { return f.size }
func (f fakeFile) Path() string          { return f.path }
func (f fakeFile) ModifiedAt() time.Time { return f.modifiedAt }
func (f fakeFile) CreatedAt() time.Time  { return f.createdAt }
func (f fakeFile) MimeType() string      { return f.mimeType }
func (f fakeFile) IsHidden() bool        { return f.hidden }

func evalStr(t *testing.T, condition string, file FileRecord, sim SimilarityFunc) bool {
	t.Helper()
	expr, err := Parse(condition)
	require.NoError(t, err, condition)
	ok, err := Eval(expr, file, sim)
	require.NoError(t, err, condition)
	return ok
}

func TestSimpleSizeComparison(t *testing.T) {
	f := fakeFile{size: 20 * 1024 * 1024}
	assert.True(t, evalStr(t, `file.size > 10MB`, f, nil))
	assert.False(t, evalStr(t, `file.size > 100MB`, f, nil))
}

func TestAndOrPrecedenceAndShortCircuit(t *testing.T) {
	f := fakeFile{ext: "pdf", size: 5}
	assert.True(t, evalStr(t, `file.ext == "pdf" OR file.ext == "jpg" AND file.size > 1000000`, f, nil))
	assert.False(t, evalStr(t, `file.ext == "jpg" AND file.size > 1000000`, f, nil))
}

func TestNotNegates(t *testing.T) {
	f := fakeFile{ext: "tmp"}
	assert.True(t, evalStr(t, `NOT file.ext == "pdf"`, f, nil))
}

func TestContainsFunction(t *testing.T) {
	f := fakeFile{name: "invoice_march_2024.pdf"}
	assert.True(t, evalStr(t, `file.name.contains("invoice")`, f, nil))
	assert.False(t, evalStr(t, `file.name.contains("resume")`, f, nil))
}

func TestInOperator(t *testing.T) {
	f := fakeFile{ext: "jpg"}
	assert.True(t, evalStr(t, `file.ext IN ["png", "jpg", "gif"]`, f, nil))
	assert.False(t, evalStr(t, `file.ext IN ["png", "gif"]`, f, nil))
}

func TestMatchesOperator(t *testing.T) {
	f := fakeFile{name: "IMG_1234.jpg"}
	assert.True(t, evalStr(t, `file.name MATCHES "^IMG_[0-9]+\\.jpg$"`, f, nil))
}

func TestVectorSimilarityComparison(t *testing.T) {
	f := fakeFile{path: "/vault/a.pdf"}
	sim := func(path, query string) (float32, bool) {
		assert.Equal(t, "/vault/a.pdf", path)
		assert.Equal(t, "invoices", query)
		return 0.91, true
	}
	assert.True(t, evalStr(t, `file.vector_similarity("invoices") > 0.8`, f, sim))
}

func TestVectorSimilarityWithoutSourceErrors(t *testing.T) {
	expr, err := Parse(`file.vector_similarity("invoices") > 0.8`)
	require.NoError(t, err)
	_, err = Eval(expr, fakeFile{path: "/a.pdf"}, nil)
	assert.ErrorIs(t, err, ErrNoSimilarity)
}

func TestVectorSimilarityBareIsParseableButErrorsAtEval(t *testing.T) {
	expr, err := Parse(`file.vector_similarity("invoices")`)
	require.NoError(t, err)
	_, err = Eval(expr, fakeFile{path: "/a.pdf"}, nil)
	assert.Error(t, err)
}

func TestParenthesesOverridePrecedence(t *testing.T) {
	f := fakeFile{ext: "jpg", size: 2000000}
	assert.True(t, evalStr(t, `(file.ext == "jpg" OR file.ext == "png") AND file.size > 1000000`, f, nil))
}

func TestUnknownFieldRejectedAtParse(t *testing.T) {
	_, err := Parse(`file.bogus == "x"`)
	assert.Error(t, err)
}

func TestIsHiddenBooleanField(t *testing.T) {
	f := fakeFile{hidden: true}
	assert.True(t, evalStr(t, `file.isHidden == true`, f, nil))
}

func TestModifiedAtAcceptsISODateLiteral(t *testing.T) {
	f := fakeFile{modifiedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
	assert.True(t, evalStr(t, `file.modifiedAt > "2024-01-01"`, f, nil))
	assert.False(t, evalStr(t, `file.modifiedAt < "2024-01-01"`, f, nil))
}

func TestCreatedAtAcceptsEpochMsLiteral(t *testing.T) {
	created := time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC)
	f := fakeFile{createdAt: created}
	condition := fmt.Sprintf(`file.createdAt == %d`, created.UnixMilli())
	assert.True(t, evalStr(t, condition, f, nil))
}
