package h5

import "testing"

func TestClassifyLinkCtrl(t *testing.T) {
	cases := []struct {
		payload []byte
		want    LinkCtrlKind
	}{
		{BuildSync(), LinkCtrlSync},
		{BuildSyncResponse(), LinkCtrlSyncResponse},
		{BuildSyncConfig(0x42), LinkCtrlConfig},
		{BuildSyncConfigResponse(0x42), LinkCtrlConfigResponse},
		{Wakeup, LinkCtrlWakeup},
		{Woken, LinkCtrlWoken},
		{Sleep, LinkCtrlSleep},
		{[]byte{0xFF, 0xFF}, LinkCtrlUnknown},
	}

	for _, c := range cases {
		if got := ClassifyLinkCtrl(c.payload); got != c.want {
			t.Errorf("ClassifyLinkCtrl(% X) = %v, want %v", c.payload, got, c.want)
		}
	}
}

func TestConfigByteEchoed(t *testing.T) {
	cfg := byte(0x17)
	b, ok := ConfigByte(BuildSyncConfig(cfg))
	if !ok || b != cfg {
		t.Fatalf("ConfigByte = %v, %v; want %v, true", b, ok, cfg)
	}
}

// S5: given the byte stream FF 01 02 FF 01 02 03 FF and the target pattern
// 01 02 03, the pattern matcher returns true only at offset 4.
func TestFindPatternOffset(t *testing.T) {
	data := []byte{0xFF, 0x01, 0x02, 0xFF, 0x01, 0x02, 0x03, 0xFF}
	pattern := []byte{0x01, 0x02, 0x03}

	offset, ok := FindPattern(data, pattern)
	if !ok || offset != 4 {
		t.Fatalf("FindPattern = %d, %v; want 4, true", offset, ok)
	}

	for o := 0; o < len(data); o++ {
		got := MatchPattern(data, o, pattern)
		want := o == 4
		if got != want {
			t.Errorf("MatchPattern(data, %d, pattern) = %v, want %v", o, got, want)
		}
	}
}
