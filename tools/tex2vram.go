// tex2vram.go - Convert an image to a raw GX direct-colour texture
//
// Usage: go run tex2vram.go -in floor.png -out floor.bin [-addr 0x4000] [-key 16] [-max 256]
// Output: little-endian A1BGR5 texels ready to copy into texture VRAM

package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/intuitionamiga/gx3d/internal/texconv"
)

func main() {
	in := flag.String("in", "", "Input image (PNG, BMP or WebP)")
	out := flag.String("out", "", "Output file for the raw texels")
	addrStr := flag.String("addr", "0", "Texture VRAM address the data will be loaded at")
	key := flag.Int("key", 0, "Make pixels with all channels below this value transparent")
	maxSize := flag.Int("max", 1024, "Largest texture edge after scaling")
	clamp := flag.Bool("clamp", false, "Clamp instead of repeat in the printed TEXIMAGE_PARAM")
	flag.Parse()

	if *in == "" || *out == "" {
		flag.Usage()
		os.Exit(1)
	}
	addr, err := strconv.ParseUint(*addrStr, 0, 32)
	if err != nil || addr&7 != 0 {
		fmt.Printf("Error: -addr must be an 8-byte aligned number\n")
		os.Exit(1)
	}
	if *key < 0 || *key > 255 {
		fmt.Printf("Error: -key must be 0-255\n")
		os.Exit(1)
	}

	tex, err := texconv.Load(*in, texconv.Options{KeyBelow: uint8(*key), MaxSize: *maxSize})
	if err != nil {
		fmt.Printf("Error converting %s: %v\n", *in, err)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, tex.Bytes(), 0644); err != nil {
		fmt.Printf("Error writing output: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Written %d bytes to %s\n", tex.Size(), *out)
	fmt.Printf("Texture dimensions: %dx%d texels\n", tex.Width, tex.Height)
	fmt.Printf("TEXIMAGE_PARAM: 0x%08X\n", tex.Param(uint32(addr), !*clamp))
}
