package ocr

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/nutrition-extractor/internal/common"
)

var fakePDF = []byte("%PDF-1.4\n% test document\n")

const richText = "Tápérték 100 g termékben\nEnergia 1173 kJ/282kcal\nZsír 12,5 g\nSzénhidrát 30 g\nFehérje 8 g\nSó 1,1 g"

func newTestExtractor(t *testing.T, r TextLayerReader, rs Rasterizer, en Engine) *Extractor {
	t.Helper()
	e, err := NewExtractor(Config{MinDimension: 16}, nil,
		WithTextLayerReader(r), WithRasterizer(rs), WithEngine(en))
	require.NoError(t, err)
	return e
}

func TestExtractRejectsNonPDF(t *testing.T) {
	reader := &fakeReader{text: richText}
	raster := &fakeRasterizer{pages: 1}
	e := newTestExtractor(t, reader, raster, &fakeEngine{})

	_, err := e.Extract(context.Background(), []byte("not a pdf"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidDocument))
	assert.Zero(t, reader.calls)
	assert.Zero(t, raster.calls)
}

func TestExtractUsesDirectTextWhenGoodEnough(t *testing.T) {
	raster := &fakeRasterizer{pages: 1}
	e := newTestExtractor(t, &fakeReader{text: richText, pages: 1}, raster, &fakeEngine{})

	res, err := e.Extract(context.Background(), fakePDF)
	require.NoError(t, err)
	assert.Equal(t, MethodText, res.Method)
	assert.True(t, res.Quality.OK)
	assert.Zero(t, raster.calls)
	assert.Contains(t, res.Text, "Energia 1173 kJ/282kcal")
}

func TestExtractKeepsPoorTextWhenOCRFindsNothing(t *testing.T) {
	direct := "Energia: 100 kJ, Zsír: 5 g, Fehérje: 10 g"
	raster := &fakeRasterizer{pages: 1}
	e := newTestExtractor(t, &fakeReader{text: direct, pages: 1}, raster, &fakeEngine{})

	res, err := e.Extract(context.Background(), fakePDF)
	require.NoError(t, err)
	assert.Equal(t, 1, raster.calls)
	assert.Equal(t, MethodText, res.Method)
	assert.Equal(t, direct, res.Text)
}

func TestExtractConcatenatesDirectAndOCR(t *testing.T) {
	engine := &fakeEngine{byLang: map[string]string{"hun+eng": "Szénhidrát 30 g  Cukor 4 g"}}
	e := newTestExtractor(t, &fakeReader{text: "Energia 100 kJ", pages: 1}, &fakeRasterizer{pages: 1}, engine)

	res, err := e.Extract(context.Background(), fakePDF)
	require.NoError(t, err)
	assert.Equal(t, MethodTextAndOCR, res.Method)
	assert.Equal(t, "Energia 100 kJ\nSzénhidrát 30 g Cukor 4 g", res.Text)
	assert.Equal(t, "hun+eng", res.Language)
}

func TestExtractOCROnlyWhenNoTextLayer(t *testing.T) {
	engine := &fakeEngine{byLang: map[string]string{"hun+eng": "Fehérje 9 g per 100 g"}}
	e := newTestExtractor(t, &fakeReader{}, &fakeRasterizer{pages: 2}, engine)

	res, err := e.Extract(context.Background(), fakePDF)
	require.NoError(t, err)
	assert.Equal(t, MethodOCR, res.Method)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, "Fehérje 9 g per 100 g\nFehérje 9 g per 100 g", res.Text)
}

func TestRecognizeTriesLanguagesInOrder(t *testing.T) {
	engine := &fakeEngine{byLang: map[string]string{
		"hun+eng": "",
		"hun":     "short",
		"eng":     "Protein 7 g Fat 3 g",
	}}
	e := newTestExtractor(t, &fakeReader{}, &fakeRasterizer{pages: 1}, engine)

	res, err := e.Extract(context.Background(), fakePDF)
	require.NoError(t, err)
	assert.Equal(t, []string{"hun+eng", "hun", "eng"}, engine.langs)
	assert.Equal(t, "eng", res.Language)
}

func TestRecognizeFallsBackToNoLanguageHint(t *testing.T) {
	engine := &fakeEngine{byLang: map[string]string{"": "x"}}
	e := newTestExtractor(t, &fakeReader{}, &fakeRasterizer{pages: 1}, engine)

	res, err := e.Extract(context.Background(), fakePDF)
	require.NoError(t, err)
	assert.Equal(t, []string{"hun+eng", "hun", "eng", ""}, engine.langs)
	assert.Equal(t, "x", res.Text)
}

func TestExtractFailsWhenEveryPathFails(t *testing.T) {
	e := newTestExtractor(t,
		&fakeReader{err: errors.New("broken xref")},
		&fakeRasterizer{err: errors.New("cannot render")},
		&fakeEngine{})

	_, err := e.Extract(context.Background(), fakePDF)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrDocumentProcessing))
	assert.Contains(t, err.Error(), "broken xref")
}

func TestExtractReturnsOnCancelledContext(t *testing.T) {
	e := newTestExtractor(t, &fakeReader{}, &fakeRasterizer{block: true}, &fakeEngine{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := e.Extract(ctx, fakePDF)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrDocumentProcessing))
}
