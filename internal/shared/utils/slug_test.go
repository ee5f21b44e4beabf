package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSlug(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Hello World", "hello-world"},
		{"  Re:Zero  Starting Life!  ", "re-zero-starting-life"},
		{"Nguyễn Nhật Ánh", "nguyen-nhat-anh"},
		{"Đường về", "duong-ve"},
		{"Café au lait", "cafe-au-lait"},
		{"Chapter 12.5 - The End", "chapter-12-5-the-end"},
		{"---", ""},
		{"日本語", ""},
		{"Mushoku_Tensei / Jobless", "mushoku-tensei-jobless"},
		{"Ascendance of a Bookworm (LN)", "ascendance-of-a-bookworm-ln"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, GenerateSlug(tc.in), tc.in)
	}
}

func TestRemoveDiacritics(t *testing.T) {
	assert.Equal(t, "Tieng Viet co dau", RemoveDiacritics("Tiếng Việt có dấu"))
	assert.Equal(t, "Strasse", RemoveDiacritics("Straße"))
	assert.Equal(t, "naive", RemoveDiacritics("naïve"))
}
