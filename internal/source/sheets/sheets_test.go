package sheets

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walaa-halaqat/halaqabot/internal/menu"
)

// newTestSource spins up one server that answers both the sheet-list call and
// the per-sheet CSV export, keyed by sheet title.
func newTestSource(t *testing.T, csvBySheet map[string]string) *Source {
	t.Helper()

	var titles []string
	for title := range csvBySheet {
		titles = append(titles, title)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/gviz/tq") {
			title := r.URL.Query().Get("sheet")
			body, ok := csvBySheet[title]
			if !ok {
				http.NotFound(w, r)
				return
			}
			fmt.Fprint(w, body)
			return
		}
		var sheets []string
		for _, title := range titles {
			sheets = append(sheets, fmt.Sprintf(`{"properties":{"title":%q}}`, title))
		}
		fmt.Fprintf(w, `{"sheets":[%s]}`, strings.Join(sheets, ","))
	}))
	t.Cleanup(srv.Close)

	s := New("sheet-id", "test-key")
	s.apiBase = srv.URL
	s.exportBase = srv.URL
	return s
}

func TestLoadBuildsHierarchy(t *testing.T) {
	body := strings.Join([]string{
		"Parent_Folder,Folder_1,Folder_2,File_link_1,File_link_2",
		`yes,الفقه,المستوى الأول,https://drive.google.com/file/d/A1/view?usp=sharing,`,
		`yes,الفقه,المستوى الثاني,"درس.mp3` + "\n" + `https://files.example.com/d.mp3",https://example.com/site`,
	}, "\n")

	s := newTestSource(t, map[string]string{"الدروس": body})
	tree, err := s.Load(context.Background())
	require.NoError(t, err)

	root := tree.Root()
	require.Equal(t, []string{"الدروس"}, root.Labels())

	section, ok := root.Child("الدروس")
	require.True(t, ok)
	fiqh, ok := section.Child("الفقه")
	require.True(t, ok)
	assert.Equal(t, []string{"المستوى الأول", "المستوى الثاني"}, fiqh.Labels())

	first, ok := fiqh.Child("المستوى الأول")
	require.True(t, ok)
	require.Len(t, first.Files, 1)
	assert.Contains(t, first.Files[0].URL, "drive.google.com")

	second, ok := fiqh.Child("المستوى الثاني")
	require.True(t, ok)
	require.Len(t, second.Files, 1)
	assert.Equal(t, "درس.mp3", second.Files[0].Filename)
	assert.Equal(t, "https://files.example.com/d.mp3", second.Files[0].URL)
	assert.Equal(t, menu.FileAudio, second.Files[0].Type)
	require.Len(t, second.Links, 1)
	assert.Equal(t, "https://example.com/site", second.Links[0].URL)
}

func TestLoadSkipsUngatedRows(t *testing.T) {
	body := strings.Join([]string{
		"Parent_Folder,Folder_1,File_link_1",
		",مهمل,https://files.example.com/skip.pdf",
		"none,مهمل٢,https://files.example.com/skip2.pdf",
		"yes,مقبول,https://drive.google.com/file/d/K1/view",
	}, "\n")

	s := newTestSource(t, map[string]string{"ورقة": body})
	tree, err := s.Load(context.Background())
	require.NoError(t, err)

	section, ok := tree.Root().Child("ورقة")
	require.True(t, ok)
	assert.Equal(t, []string{"مقبول"}, section.Labels())
}

func TestLoadFolderPlaceholders(t *testing.T) {
	// "-", "none" and "nan" cells stop the nesting at that level
	body := strings.Join([]string{
		"Parent_Folder,Folder_1,Folder_2,File_link_1",
		"yes,قسم,-,https://drive.google.com/file/d/P1/view",
		"yes,قسم,فرع,https://drive.google.com/file/d/P2/view",
	}, "\n")

	s := newTestSource(t, map[string]string{"ورقة": body})
	tree, err := s.Load(context.Background())
	require.NoError(t, err)

	section, _ := tree.Root().Child("ورقة")
	qism, ok := section.Child("قسم")
	require.True(t, ok)
	require.Len(t, qism.Files, 1)
	branch, ok := qism.Child("فرع")
	require.True(t, ok)
	require.Len(t, branch.Files, 1)
}

func TestLoadPrunesEmptyBranches(t *testing.T) {
	body := strings.Join([]string{
		"Parent_Folder,Folder_1,File_link_1",
		"yes,فارغ,",
		"yes,ممتلئ,https://drive.google.com/file/d/F1/view",
	}, "\n")

	s := newTestSource(t, map[string]string{"ورقة": body})
	tree, err := s.Load(context.Background())
	require.NoError(t, err)

	section, ok := tree.Root().Child("ورقة")
	require.True(t, ok)
	assert.Equal(t, []string{"ممتلئ"}, section.Labels())
}

func TestLoadPrunesEmptySheet(t *testing.T) {
	empty := "Parent_Folder,Folder_1,File_link_1\n"
	full := strings.Join([]string{
		"Parent_Folder,Folder_1,File_link_1",
		"yes,قسم,https://drive.google.com/file/d/X1/view",
	}, "\n")

	s := newTestSource(t, map[string]string{"فارغة": empty, "ممتلئة": full})
	tree, err := s.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"ممتلئة"}, tree.Root().Labels())
}

func TestLoadMissingParentColumn(t *testing.T) {
	body := "Folder_1,File_link_1\nقسم,https://drive.google.com/file/d/X1/view\n"
	s := newTestSource(t, map[string]string{"ورقة": body})
	_, err := s.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Parent_Folder")
}

func TestLoadRequiresAPIKey(t *testing.T) {
	s := New("sheet-id", "")
	_, err := s.Load(context.Background())
	require.Error(t, err)
}

func TestExtKind(t *testing.T) {
	assert.Equal(t, menu.FileAudio, extKind("درس.mp3"))
	assert.Equal(t, menu.FileAudio, extKind("https://x/a.m4a"))
	assert.Equal(t, menu.FileDocument, extKind("ملخص.pdf"))
	assert.Equal(t, menu.FileDocument, extKind("كتاب.docx"))
	assert.Equal(t, menu.FileUnspecified, extKind("https://example.com/page"))
}
