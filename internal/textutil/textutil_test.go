package textutil

import "testing"

func TestNormalize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercase and trim", in: "  Видеоредактор  ", want: "видеоредактор"},
		{name: "keeps whitelist chars", in: "C++ / Python-разработчик #remote @studio", want: "c++ / python-разработчик #remote @studio"},
		{name: "strips punctuation", in: "Редактор, срочно!!!", want: "редактор срочно"},
		{name: "collapses whitespace", in: "студия\n\nкреатив   ищет", want: "студия креатив ищет"},
		{name: "empty", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClean(t *testing.T) {
	t.Parallel()
	in := "Заголовок   \n\n\n\n\nтекст  с   пробелами\n  строка  "
	want := "Заголовок\n\nтекст с пробелами\nстрока"
	if got := Clean(in); got != want {
		t.Fatalf("Clean = %q, want %q", got, want)
	}
}

func TestFirstLine(t *testing.T) {
	t.Parallel()
	if got := FirstLine("Видеоредактор\nСтудия"); got != "Видеоредактор" {
		t.Fatalf("FirstLine = %q", got)
	}
	if got := FirstLine(""); got != "" {
		t.Fatalf("FirstLine('') = %q", got)
	}
}

func TestExtractURL(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "https url", in: "вакансия https://example.com/jobs/1 подробности", want: "https://example.com/jobs/1"},
		{name: "bare t.me link", in: "пишите t.me/studio_hr", want: "https://t.me/studio_hr"},
		{name: "first of several", in: "https://a.example https://b.example", want: "https://a.example"},
		{name: "none", in: "без ссылок", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractURL(tt.in); got != tt.want {
				t.Fatalf("ExtractURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()
	if got := Truncate("видеоредактор", 5); got != "видео..." {
		t.Fatalf("Truncate = %q", got)
	}
	if got := Truncate("короткий", 100); got != "короткий" {
		t.Fatalf("Truncate short = %q", got)
	}
}
