package wire

import (
	"encoding/binary"
	"testing"
)

func TestDeployRequest_RoundTrip(t *testing.T) {
	want := DeployRequest{
		TotalBudget:       5_000_000_000,
		UnitPrice:         1_234_567_890,
		MinEVThresholdBps: -500,
		MaxBlocks:         3,
	}
	got, err := DecodeDeployRequest(want.Encode())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestDeployRequest_Layout(t *testing.T) {
	b := make([]byte, RequestLen)
	binary.LittleEndian.PutUint64(b[0:], 100)
	binary.LittleEndian.PutUint64(b[8:], 200)
	evBps := int16(-42)
	binary.LittleEndian.PutUint16(b[16:], uint16(evBps))
	b[18] = 5
	req, err := DecodeDeployRequest(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if req.TotalBudget != 100 || req.UnitPrice != 200 || req.MinEVThresholdBps != -42 || req.MaxBlocks != 5 {
		t.Fatalf("layout mismatch: %+v", req)
	}
}

func TestDeployRequest_ReservedBytesIgnored(t *testing.T) {
	a := DeployRequest{TotalBudget: 1, UnitPrice: 2, MinEVThresholdBps: 3, MaxBlocks: 4}.Encode()
	b := append([]byte{}, a...)
	copy(b[19:], []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF})
	ra, _ := DecodeDeployRequest(a)
	rb, err := DecodeDeployRequest(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ra != rb {
		t.Fatalf("reserved bytes affected decode: %+v vs %+v", ra, rb)
	}
}

func TestDeployRequest_RejectsShortRecord(t *testing.T) {
	if _, err := DecodeDeployRequest(make([]byte, RequestLen-1)); err == nil {
		t.Fatalf("expected error for short record")
	}
}
