// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"testing"
	"time"

	"github.com/morganforge/inkwell-tui/internal/config"
)

func TestValidCategory(t *testing.T) {
	for _, cat := range []string{"character", "worldbuilding", "plot"} {
		if !validCategory(cat) {
			t.Errorf("validCategory(%q) = false", cat)
		}
	}
	if validCategory("romance") {
		t.Error("unknown category accepted")
	}
}

func TestRequestTimeoutFallsBack(t *testing.T) {
	s := &ReplSession{Config: config.Default()}
	if got := requestTimeout(s); got != 30*time.Second {
		t.Errorf("default timeout = %v", got)
	}

	s.Config.Backend.TimeoutSecs = 5
	if got := requestTimeout(s); got != 5*time.Second {
		t.Errorf("timeout = %v", got)
	}

	s.Config.Backend.TimeoutSecs = 0
	if got := requestTimeout(s); got != 30*time.Second {
		t.Errorf("zero timeout should fall back, got %v", got)
	}
}
