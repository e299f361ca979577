package world

import "testing"

func TestFlatBlock(t *testing.T) {
	tests := []struct {
		y    int32
		want uint16
	}{
		{-1, Air},
		{0, Bedrock},
		{1, Dirt},
		{3, Dirt},
		{4, Grass},
		{SurfaceY, Air},
		{100, Air},
		{256, Air},
	}
	for _, tt := range tests {
		if got := FlatBlock(tt.y); got != tt.want {
			t.Errorf("FlatBlock(%d) = %d, want %d", tt.y, got, tt.want)
		}
	}
}

func TestWorldGetSetBlock(t *testing.T) {
	w := NewWorld()
	if got := w.GetBlock(3, 0, -7); got != Bedrock {
		t.Errorf("GetBlock = %d, want bedrock", got)
	}
	w.SetBlock(3, 10, -7, 1<<4)
	if got := w.GetBlock(3, 10, -7); got != 1<<4 {
		t.Errorf("GetBlock after SetBlock = %d, want stone", got)
	}
	w.SetBlock(0, 300, 0, 1<<4)
	if got := w.GetBlock(0, 300, 0); got != Air {
		t.Errorf("out of range SetBlock was stored: %d", got)
	}
}
