package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyGrid(t *testing.T) {
	cases := []struct {
		mental, brain float64
		want          FatigueType
	}{
		{0, 0, TypeMild},
		{0, 33, TypeInsensitive},
		{0, 66, TypeBlind},
		{33, 0, TypeSensitive},
		{40, 50, TypeBalanced},
		{33, 66, TypeOverlooked},
		{66, 0, TypeHyper},
		{66, 33, TypeAmplified},
		{100, 100, TypeCritical},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.mental, tc.brain),
			"classify(%v, %v)", tc.mental, tc.brain)
	}
}

func TestClassifyBucketBoundaries(t *testing.T) {
	// 33 and 66 belong to the upper bucket.
	assert.Equal(t, 0, fatigueLevel(32.999))
	assert.Equal(t, 1, fatigueLevel(33))
	assert.Equal(t, 1, fatigueLevel(65.999))
	assert.Equal(t, 2, fatigueLevel(66))
}

func TestClassifyTotalAndDeterministic(t *testing.T) {
	known := map[FatigueType]bool{
		TypeMild: true, TypeInsensitive: true, TypeBlind: true,
		TypeSensitive: true, TypeBalanced: true, TypeOverlooked: true,
		TypeHyper: true, TypeAmplified: true, TypeCritical: true,
	}
	for mental := 0.0; mental <= 100; mental += 0.5 {
		for brain := 0.0; brain <= 100; brain += 0.5 {
			got := Classify(mental, brain)
			if !known[got] {
				t.Fatalf("classify(%v, %v) produced unknown label %q", mental, brain, got)
			}
			if again := Classify(mental, brain); again != got {
				t.Fatalf("classify(%v, %v) not deterministic: %q then %q", mental, brain, got, again)
			}
		}
	}
}
