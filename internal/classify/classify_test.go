package classify

import (
	"testing"

	"github.com/reuno721/MiniMapPad/internal/extraction"
	"github.com/stretchr/testify/assert"
)

// Test Plan for Classify:
// - Extension wins over any content (case-insensitive, .kts included)
// - <?php in the head selects PHP
// - A brace-free package line plus a Kotlin keyword selects Kotlin
// - A package line ending in ; selects Java
// - Weighted scores pick PHP from content alone
// - Close scores fall back to the tie-break tokens
// - No signal at all returns the default language

func TestClassify_ExtensionPriority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		filename string
		want     extraction.Language
	}{
		{"index.php", extraction.LanguagePHP},
		{"Main.KT", extraction.LanguageKotlin},
		{"build.gradle.kts", extraction.LanguageKotlin},
		{"App.java", extraction.LanguageJava},
	}

	// Test: content that scores strongly for another language is ignored
	source := "<?php\n$a = $b->c();\n"
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Classify(source, tt.filename))
		})
	}
}

func TestClassify_HeaderSignals(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		want   extraction.Language
	}{
		{"php open tag", "<?PHP\necho 1;", extraction.LanguagePHP},
		{"kotlin package", "package com.app\n\nfun main() {}\n", extraction.LanguageKotlin},
		{"java package", "package com.app;\n\nclass A {}\n", extraction.LanguageJava},
		{"kotlin package without keyword scores", "package com.app\n\npublic class A { static int x; }\n", extraction.LanguageJava},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Classify(tt.source, ""))
		})
	}
}

func TestClassify_ContentOnlyPHP(t *testing.T) {
	t.Parallel()

	// Test: no extension, no open tag, PHP idioms dominate
	source := "namespace App;\nuse App\\Model;\nfunction run($x) {\n  return $x->go() + Foo::bar($x);\n}\n"
	assert.Equal(t, extraction.LanguagePHP, Classify(source, "snippet.txt"))

	scores := Score(source)
	assert.Greater(t, scores[extraction.LanguagePHP], scores[extraction.LanguageKotlin])
	assert.Greater(t, scores[extraction.LanguagePHP], scores[extraction.LanguageJava])
}

func TestClassify_DefaultWhenNoSignals(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultLanguage, Classify("hello world", ""))
	assert.Equal(t, extraction.LanguageKotlin, Classify("", ""))
}

func TestScore_Weights(t *testing.T) {
	t.Parallel()

	// Test: counted signals scale with occurrences
	scores := Score("$a $b $c")
	assert.Equal(t, 12, scores[extraction.LanguagePHP])
	assert.Equal(t, 0, scores[extraction.LanguageKotlin])
	assert.Equal(t, 0, scores[extraction.LanguageJava])

	// Test: Compose idioms
	scores = Score("@Composable\nfun Screen() {\n  var open by remember { mutableStateOf(false) }\n}\n")
	assert.Equal(t, 10+6+8, scores[extraction.LanguageKotlin])

	// Test: Java visibility + class and static
	scores = Score("import java.util.List;\npublic class A {\n  static int n;\n}\n")
	assert.Equal(t, 4+9+2, scores[extraction.LanguageJava])
}

func TestTieBreak(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		scores Scores
		want   extraction.Language
	}{
		{
			name:   "clear winner",
			source: "$x",
			scores: Scores{extraction.LanguagePHP: 0, extraction.LanguageKotlin: 2, extraction.LanguageJava: 20},
			want:   extraction.LanguageJava,
		},
		{
			name:   "close scores with php variable",
			source: "$x object Foo",
			scores: Scores{extraction.LanguagePHP: 4, extraction.LanguageKotlin: 6, extraction.LanguageJava: 0},
			want:   extraction.LanguagePHP,
		},
		{
			name:   "close scores with kotlin keyword",
			source: "fun go() {}",
			scores: Scores{extraction.LanguagePHP: 0, extraction.LanguageKotlin: 9, extraction.LanguageJava: 11},
			want:   extraction.LanguageKotlin,
		},
		{
			name:   "close scores without tokens",
			source: "static",
			scores: Scores{extraction.LanguagePHP: 2, extraction.LanguageKotlin: 0, extraction.LanguageJava: 2},
			want:   extraction.LanguagePHP,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, TieBreak(tt.source, tt.scores))
		})
	}
}

func TestScores_Ranked(t *testing.T) {
	t.Parallel()

	scores := Scores{extraction.LanguagePHP: 1, extraction.LanguageKotlin: 5, extraction.LanguageJava: 5}
	assert.Equal(t, []extraction.Language{extraction.LanguageKotlin, extraction.LanguageJava, extraction.LanguagePHP}, scores.Ranked())

	best, score := scores.Best()
	assert.Equal(t, extraction.LanguageKotlin, best)
	assert.Equal(t, 5, score)
}
