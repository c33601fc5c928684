package main

import (
	"crypto/sha256"
	"time"
)

var (
	fibSink  int
	hashSink [32]byte
)

func fib(n int) int {
	if n < 2 {
		return n
	}
	return fib(n-1) + fib(n-2)
}

// startDemoWorkload keeps two goroutines busy with recognizably
// different call shapes so every report view has content.
func startDemoWorkload() {
	go func() {
		for {
			fibSink = fib(27)
			time.Sleep(5 * time.Millisecond)
		}
	}()
	go func() {
		buf := make([]byte, 1<<16)
		for {
			hashSink = sha256.Sum256(buf)
			time.Sleep(time.Millisecond)
		}
	}()
}
