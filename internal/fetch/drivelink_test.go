package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveIndirectLink(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{
			name: "view with sharing suffix",
			in:   "https://drive.google.com/file/d/ABC123/view?usp=sharing",
			want: "https://drive.google.com/uc?export=download&id=ABC123",
			ok:   true,
		},
		{
			name: "view with drive_link suffix",
			in:   "https://drive.google.com/file/d/XyZ_9/view?usp=drive_link",
			want: "https://drive.google.com/uc?export=download&id=XyZ_9",
			ok:   true,
		},
		{
			name: "view without query",
			in:   "https://drive.google.com/file/d/ABC123/view",
			want: "https://drive.google.com/uc?export=download&id=ABC123",
			ok:   true,
		},
		{
			name: "open path",
			in:   "https://drive.google.com/open?id=ABC123&foo=1",
			want: "https://drive.google.com/uc?export=download&id=ABC123",
			ok:   true,
		},
		{
			name: "uc path",
			in:   "https://drive.google.com/uc?id=ABC123",
			want: "https://drive.google.com/uc?export=download&id=ABC123",
			ok:   true,
		},
		{
			name: "plain url untouched",
			in:   "https://example.com/files/a.pdf",
			ok:   false,
		},
		{
			name: "drive folder link untouched",
			in:   "https://drive.google.com/drive/folders/ABC123",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveIndirectLink(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
