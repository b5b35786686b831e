package vertex

import "testing"

func TestSemanticSizes(t *testing.T) {
	tests := []struct {
		sem  Semantic
		want uint32
	}{
		{Position, 12},
		{Normal, 12},
		{TexCoord, 8},
		{JointIds, 8},
		{JointWeights, 16},
		{PosTex, 20},
	}
	for _, tt := range tests {
		t.Run(tt.sem.String(), func(t *testing.T) {
			if got := tt.sem.Size(); got != tt.want {
				t.Fatalf("Size() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPosTexOffsets(t *testing.T) {
	f := PosTex.Format()
	if len(f.Attributes) != 2 || f.Attributes[1].Offset != 12 {
		t.Fatalf("PosTex attributes = %+v", f.Attributes)
	}
}
