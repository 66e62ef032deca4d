package utils

import (
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("cliente-a") {
			t.Fatalf("la petición %d dentro del límite fue rechazada", i+1)
		}
	}
	if rl.Allow("cliente-a") {
		t.Error("la cuarta petición debió rechazarse")
	}

	// Otra llave tiene su propio contador
	if !rl.Allow("cliente-b") {
		t.Error("una llave distinta no debe compartir el límite")
	}
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	rl := NewRateLimiter(1, 50*time.Millisecond)

	if !rl.Allow("cliente") {
		t.Fatal("la primera petición debió permitirse")
	}
	if rl.Allow("cliente") {
		t.Fatal("la segunda petición inmediata debió rechazarse")
	}

	time.Sleep(60 * time.Millisecond)
	if !rl.Allow("cliente") {
		t.Error("pasada la ventana la petición debió permitirse")
	}
}

func TestRateLimiterReset(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	rl.Allow("cliente")
	rl.Reset("cliente")
	if !rl.Allow("cliente") {
		t.Error("después de Reset la petición debió permitirse")
	}
}

func TestRateLimiterGetRemaining(t *testing.T) {
	rl := NewRateLimiter(5, time.Minute)

	rl.Allow("cliente")
	rl.Allow("cliente")
	if remaining := rl.GetRemaining("cliente"); remaining != 3 {
		t.Errorf("esperaba 3 restantes, obtuvo %d", remaining)
	}
}
