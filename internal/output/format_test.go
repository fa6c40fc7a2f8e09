package output

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"todopro/internal/service"
	"todopro/internal/tasklist"
	"todopro/internal/testutil"
)

func sampleState() tasklist.State {
	st := tasklist.NewState([]service.Task{
		{ID: "1", Title: "Buy milk", Date: "2024-01-01", Hour: 9, Minute: 30},
		{ID: "2", Title: "Walk dog", Status: true, Date: "2024-01-02", Hour: 18},
	})
	return tasklist.Reduce(st, tasklist.AddStarted{
		ProvisionalID: uuid.MustParse("6f1c3c1e-8a4e-4d0b-9b8e-1d2f3a4b5c6d"),
		Draft:         service.Draft{Title: "Call mom", Date: "2024-01-03", Hour: 8},
	})
}

func TestFormatList_Golden(t *testing.T) {
	var buf bytes.Buffer
	FormatList(&buf, sampleState())
	testutil.Golden(t, "list", buf.Bytes())
}

func TestFormatList_Empty(t *testing.T) {
	var buf bytes.Buffer
	FormatList(&buf, tasklist.NewState(nil))
	testutil.Golden(t, "empty", buf.Bytes())
}

func TestFormatTask_NormalizesTitle(t *testing.T) {
	var buf bytes.Buffer
	FormatTask(&buf, 12, service.Task{ID: "x", Title: "a\nb", Hour: 7, Minute: 5}, false)
	assert.Equal(t, "  12  [ ] a b  07:05  #x\n", buf.String())

	buf.Reset()
	FormatTask(&buf, 1, service.Task{ID: "y", Title: "   ", Date: "2024-01-01"}, false)
	assert.Equal(t, "   1  [ ] (untitled)  2024-01-01 00:00  #y\n", buf.String())
}

func TestRender_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, JSON, sampleState()))

	assert.JSONEq(t, `{
		"tasks": [
			{"position": 1, "id": 1, "title": "Buy milk", "status": false, "date": "2024-01-01", "time": "09:30"},
			{"position": 2, "id": 2, "title": "Walk dog", "status": true, "date": "2024-01-02", "time": "18:00"},
			{"position": 3, "title": "Call mom", "status": false, "date": "2024-01-03", "time": "08:00", "saving": true}
		],
		"stats": {"total": 3, "completed": 1, "pending": 2}
	}`, buf.String())
}

func TestRender_JSONEmptyListIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, JSON, tasklist.NewState(nil)))
	assert.JSONEq(t, `{"tasks": [], "stats": {"total": 0, "completed": 0, "pending": 0}}`, buf.String())
}

func TestRender_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, YAML, sampleState()))

	var doc struct {
		Tasks []struct {
			ID     string `yaml:"id"`
			Title  string `yaml:"title"`
			Saving bool   `yaml:"saving"`
		} `yaml:"tasks"`
		Stats tasklist.Stats `yaml:"stats"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))

	require.Len(t, doc.Tasks, 3)
	assert.Equal(t, "1", doc.Tasks[0].ID)
	assert.Equal(t, "Call mom", doc.Tasks[2].Title)
	assert.True(t, doc.Tasks[2].Saving)
	assert.Equal(t, tasklist.Stats{Total: 3, Completed: 1, Pending: 2}, doc.Stats)
}

func TestRenderStats(t *testing.T) {
	st := tasklist.Stats{Total: 4, Completed: 1, Pending: 3}

	var buf bytes.Buffer
	require.NoError(t, RenderStats(&buf, Text, st))
	assert.Equal(t, "Total: 4  Completed: 1  Pending: 3\n", buf.String())

	buf.Reset()
	require.NoError(t, RenderStats(&buf, JSON, st))
	assert.JSONEq(t, `{"total": 4, "completed": 1, "pending": 3}`, buf.String())
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": Text, "text": Text, "JSON": JSON, " yaml ": YAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("xml")
	assert.Error(t, err)
}
