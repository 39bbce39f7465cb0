package source

import "testing"

func TestIsInstagramURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.instagram.com/p/Cabc123/", true},
		{"https://instagram.com/p/Cabc123", true},
		{"http://www.instagram.com/reel/DRZh6N2EhdO/?igsh=abc", true},
		{"https://www.instagram.com/p/Cabc123?igsh=NjZiM2M3MzIxNA==", true},
		{"https://www.instagram.com/reel/DRZh6N2EhdO#comments", true},
		{"https://www.instagram.com/tv/XyZ_-9/", true},
		{"HTTPS://WWW.INSTAGRAM.COM/P/CABC123/", true},
		{"https://www.instagram.com/someuser/", false},
		{"https://example.com/p/Cabc123/", false},
		{"2 cups flour, 1 cup sugar", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsInstagramURL(tt.url); got != tt.want {
			t.Errorf("IsInstagramURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestCleanURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"tracking params stripped",
			"https://www.instagram.com/reel/DRZh6N2EhdO/?igsh=NjZiM2M3MzIxNA==",
			"https://www.instagram.com/reel/DRZh6N2EhdO",
		},
		{
			"fragment stripped",
			"https://www.instagram.com/p/Cabc123/#comments",
			"https://www.instagram.com/p/Cabc123",
		},
		{
			"already clean",
			"https://www.instagram.com/p/Cabc123",
			"https://www.instagram.com/p/Cabc123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanURL(tt.in); got != tt.want {
				t.Errorf("CleanURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestShortcode(t *testing.T) {
	got, err := Shortcode("https://www.instagram.com/reel/DRZh6N2EhdO")
	if err != nil {
		t.Fatalf("Shortcode failed: %v", err)
	}
	if got != "DRZh6N2EhdO" {
		t.Errorf("Shortcode = %q, want DRZh6N2EhdO", got)
	}

	if _, err := Shortcode("https://www.instagram.com/"); err == nil {
		t.Error("expected error for URL without shortcode")
	}
}

func TestExtractCaption(t *testing.T) {
	page := `<html><head>` +
		`<meta property="og:description" content="120 likes, 4 comments - somecook on March 1, 2026: &quot;Easy flatbread: 2 cups flour, 1 cup yogurt. Knead, rest, fry.&quot;" />` +
		`</head></html>`

	caption, err := extractCaption(page)
	if err != nil {
		t.Fatalf("extractCaption failed: %v", err)
	}
	want := "Easy flatbread: 2 cups flour, 1 cup yogurt. Knead, rest, fry."
	if caption != want {
		t.Errorf("caption = %q, want %q", caption, want)
	}
}

func TestExtractCaption_NoMeta(t *testing.T) {
	if _, err := extractCaption("<html><body>login required</body></html>"); err == nil {
		t.Error("expected error for page without og:description")
	}
}
