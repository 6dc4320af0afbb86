package dedup

import "testing"

func TestFingerprint(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		a, b    [3]string // title, company, link
		wantEq  bool
	}{
		{
			name:   "deterministic",
			a:      [3]string{"Видеоредактор", "Студия Креатив", "https://t.me/studio/42"},
			b:      [3]string{"Видеоредактор", "Студия Креатив", "https://t.me/studio/42"},
			wantEq: true,
		},
		{
			name:   "normalization folds case and punctuation",
			a:      [3]string{"Видеоредактор!!!", "  СТУДИЯ  КРЕАТИВ  ", " https://t.me/studio/42 "},
			b:      [3]string{"видеоредактор", "студия креатив", "https://t.me/studio/42"},
			wantEq: true,
		},
		{
			name:   "different link differs",
			a:      [3]string{"Видеоредактор", "Студия Креатив", "https://t.me/studio/42"},
			b:      [3]string{"Видеоредактор", "Студия Креатив", "https://t.me/studio/43"},
			wantEq: false,
		},
		{
			name:   "different company differs",
			a:      [3]string{"Видеоредактор", "Студия Креатив", "https://t.me/studio/42"},
			b:      [3]string{"Видеоредактор", "Другая Студия", "https://t.me/studio/42"},
			wantEq: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fa := Fingerprint(tt.a[0], tt.a[1], tt.a[2])
			fb := Fingerprint(tt.b[0], tt.b[1], tt.b[2])
			if (fa == fb) != tt.wantEq {
				t.Fatalf("fingerprints %q vs %q, wantEq=%v", fa, fb, tt.wantEq)
			}
		})
	}
}

func TestFingerprintShape(t *testing.T) {
	t.Parallel()
	fp := Fingerprint("Редактор", "", "")
	if len(fp) != 64 {
		t.Fatalf("fingerprint length = %d, want 64 hex chars", len(fp))
	}
}
