package process

import "testing"

func TestSpawnTrueExitsSuccessfully(t *testing.T) {
	proc, err := Spawn("true", []string{"true"}, nil, true)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	state, err := proc.Wait()
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if !state.Success() {
		t.Fatalf("state.Success() = false, state=%v", state)
	}
	if state.ExitedAbnormally() {
		t.Fatal("ExitedAbnormally() = true for a zero exit")
	}
}

func TestSpawnFalseExitsNonZero(t *testing.T) {
	proc, err := Spawn("false", []string{"false"}, nil, true)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	state, err := proc.Wait()
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if state.Success() {
		t.Fatal("state.Success() = true for a nonzero exit")
	}
	if !state.ExitedAbnormally() {
		t.Fatal("ExitedAbnormally() = false for a nonzero exit")
	}
	if state.ExitCode() != 1 {
		t.Fatalf("ExitCode() = %d, want 1", state.ExitCode())
	}
}

func TestSpawnUnknownExecutable(t *testing.T) {
	_, err := Spawn("definitely-not-a-real-executable", nil, nil, true)
	if err == nil {
		t.Fatal("expected error spawning a nonexistent executable")
	}
}

func TestKillStopsRunningProcess(t *testing.T) {
	proc, err := Spawn("sleep", []string{"sleep", "30"}, nil, true)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if err := proc.Kill(); err != nil {
		t.Fatalf("Kill: %v", err)
	}
	state, err := proc.Wait()
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if state.Exited() {
		t.Fatal("Exited() = true for a killed process, want signal termination")
	}
}
