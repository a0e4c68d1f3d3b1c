package main

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	lua "github.com/yuin/gopher-lua"

	"github.com/intuitionamiga/gx3d"
	"github.com/intuitionamiga/gx3d/internal/scene"
	"github.com/intuitionamiga/gx3d/internal/texconv"
)

var errNoDrawFunction = errors.New("script defines no draw(frame) function")

// luaScene runs a script that builds each frame through the gx table.
// The script body runs once at load; draw(frame) runs every frame.
type luaScene struct {
	L *lua.LState
	b    *scene.Builder
	e    *gx3d.GXEngine
	vram texconv.VRAMWriter

	frame     int
	flushAttr uint32
}

func newLuaScene(path string, b *scene.Builder, e *gx3d.GXEngine, vram texconv.VRAMWriter) (*luaScene, error) {
	s := &luaScene{L: lua.NewState(), b: b, e: e, vram: vram}
	s.register()
	if err := s.L.DoFile(path); err != nil {
		s.L.Close()
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if s.L.GetGlobal("draw").Type() != lua.LTFunction {
		s.L.Close()
		return nil, fmt.Errorf("load %s: %w", path, errNoDrawFunction)
	}
	return s, nil
}

func (s *luaScene) Close() { s.L.Close() }

func (s *luaScene) Draw(_ *scene.Builder, frame int) (uint32, error) {
	s.frame = frame
	s.flushAttr = 0
	err := s.L.CallByParam(lua.P{
		Fn:      s.L.GetGlobal("draw"),
		NRet:    0,
		Protect: true,
	}, lua.LNumber(frame))
	return s.flushAttr, err
}

func (s *luaScene) register() {
	L := s.L
	f32 := func(n int) float32 { return float32(L.CheckNumber(n)) }
	u32 := func(n int) uint32 { return uint32(L.CheckInt64(n)) }
	vec3 := func(n int) mgl32.Vec3 { return mgl32.Vec3{f32(n), f32(n + 1), f32(n + 2)} }
	rgb := func(n int) uint32 {
		return scene.RGB15(uint8(L.CheckInt(n)), uint8(L.CheckInt(n+1)), uint8(L.CheckInt(n+2)))
	}

	gx := L.NewTable()
	L.SetFuncs(gx, map[string]lua.LGFunction{
		// gx.cmd(op, params...) writes raw command entries
		"cmd": func(L *lua.LState) int {
			op := uint8(L.CheckInt(1))
			if L.GetTop() == 1 {
				s.e.WriteCommand(op, 0)
				return 0
			}
			for i := 2; i <= L.GetTop(); i++ {
				s.e.WriteCommand(op, u32(i))
			}
			return 0
		},
		"begin": func(L *lua.LState) int {
			s.b.Begin(u32(1))
			return 0
		},
		"finish": func(L *lua.LState) int {
			s.b.End()
			return 0
		},
		"vertex": func(L *lua.LState) int {
			s.b.Vertex(f32(1), f32(2), f32(3))
			return 0
		},
		"normal": func(L *lua.LState) int {
			s.b.Normal(vec3(1))
			return 0
		},
		"color": func(L *lua.LState) int {
			s.b.Color(rgb(1))
			return 0
		},
		"texcoord": func(L *lua.LState) int {
			s.b.TexCoord(f32(1), f32(2))
			return 0
		},
		"teximage": func(L *lua.LState) int {
			s.b.TexImage(uint32(L.OptInt64(1, 0)))
			return 0
		},
		// gx.texture(path, addr [, repeat [, key]]) uploads an image and
		// returns its TEXIMAGE_PARAM, width and height
		"texture": func(L *lua.LState) int {
			addr := u32(2) &^ 7
			tex, err := texconv.Load(L.CheckString(1), texconv.Options{KeyBelow: uint8(L.OptInt(4, 0))})
			if err != nil {
				L.RaiseError("gx.texture: %v", err)
				return 0
			}
			tex.Upload(s.vram, addr)
			L.Push(lua.LNumber(tex.Param(addr, L.OptBool(3, true))))
			L.Push(lua.LNumber(tex.Width))
			L.Push(lua.LNumber(tex.Height))
			return 3
		},
		"polyattr": func(L *lua.LState) int {
			s.b.PolygonAttr(u32(1))
			return 0
		},
		"material": func(L *lua.LState) int {
			s.b.Material(u32(1), u32(2), u32(3), u32(4), L.OptBool(5, false))
			return 0
		},
		"light": func(L *lua.LState) int {
			s.b.Light(L.CheckInt(1), vec3(2), rgb(5))
			return 0
		},
		// gx.flush(attr) sets the SWAP_BUFFERS attributes for this frame
		"flush": func(L *lua.LState) int {
			s.flushAttr = uint32(L.OptInt64(1, 0)) & (gx3d.GX_FLUSH_MANUAL_SORT | gx3d.GX_FLUSH_WBUFFER)
			return 0
		},
		"mode": func(L *lua.LState) int {
			s.b.MatrixMode(u32(1))
			return 0
		},
		"identity": func(L *lua.LState) int {
			s.b.Identity()
			return 0
		},
		"push": func(L *lua.LState) int {
			s.b.Push()
			return 0
		},
		"pop": func(L *lua.LState) int {
			s.b.Pop(L.OptInt(1, 1))
			return 0
		},
		"perspective": func(L *lua.LState) int {
			s.b.Perspective(f32(1), f32(2), f32(3), f32(4))
			return 0
		},
		"ortho": func(L *lua.LState) int {
			s.b.Ortho(f32(1), f32(2), f32(3), f32(4), f32(5), f32(6))
			return 0
		},
		"lookat": func(L *lua.LState) int {
			s.b.LookAt(vec3(1), vec3(4), vec3(7))
			return 0
		},
		"rotate": func(L *lua.LState) int {
			s.b.Rotate(f32(1), vec3(2))
			return 0
		},
		"translate": func(L *lua.LState) int {
			s.b.Translate(f32(1), f32(2), f32(3))
			return 0
		},
		"scale": func(L *lua.LState) int {
			s.b.Scale(f32(1), f32(2), f32(3))
			return 0
		},
		"cube": func(L *lua.LState) int {
			c := rgb(2)
			s.b.Draw(scene.Cube(f32(1), [6]uint32{c, c, c, c, c, c}), L.OptBool(5, false))
			return 0
		},
		"viewport": func(L *lua.LState) int {
			s.b.Viewport(uint8(L.CheckInt(1)), uint8(L.CheckInt(2)), uint8(L.CheckInt(3)), uint8(L.CheckInt(4)))
			return 0
		},
		"clearcolor": func(L *lua.LState) int {
			a := uint32(L.OptInt(4, 31)) & 0x1F
			s.e.HandleWrite(gx3d.GX_REG_CLEAR_COLOR, rgb(1)|a<<16|63<<24)
			return 0
		},
		"reg": func(L *lua.LState) int {
			if L.GetTop() >= 2 {
				s.e.HandleWrite(u32(1), u32(2))
				return 0
			}
			L.Push(lua.LNumber(s.e.HandleRead(u32(1))))
			return 1
		},
		"frame": func(L *lua.LState) int {
			L.Push(lua.LNumber(s.frame))
			return 1
		},
	})

	consts := map[string]uint32{
		"TRIANGLES":    gx3d.GX_PRIM_TRIANGLES,
		"QUADS":        gx3d.GX_PRIM_QUADS,
		"TRI_STRIP":    gx3d.GX_PRIM_TRI_STRIP,
		"QUAD_STRIP":   gx3d.GX_PRIM_QUAD_STRIP,
		"PROJECTION":   gx3d.GX_MTX_PROJECTION,
		"POSITION":     gx3d.GX_MTX_POSITION,
		"POS_VECTOR":   gx3d.GX_MTX_POS_VECTOR,
		"TEXTURE":      gx3d.GX_MTX_TEXTURE,
		"FRONT":        gx3d.GX_ATTR_FRONT_VISIBLE,
		"BACK":         gx3d.GX_ATTR_BACK_VISIBLE,
		"FOG":          gx3d.GX_ATTR_FOG,
		"ALPHA_SHIFT":  gx3d.GX_ATTR_ALPHA_SHIFT,
		"ID_SHIFT":     gx3d.GX_ATTR_ID_SHIFT,
		"MODE_SHIFT":   gx3d.GX_ATTR_MODE_SHIFT,
		"MANUAL_SORT":  gx3d.GX_FLUSH_MANUAL_SORT,
		"WBUFFER":      gx3d.GX_FLUSH_WBUFFER,
		"DISP3DCNT":    gx3d.GX_REG_DISP3DCNT,
		"FOG_COLOR":    gx3d.GX_REG_FOG_COLOR,
		"FOG_OFFSET":   gx3d.GX_REG_FOG_OFFSET,
		"FOG_TABLE":    gx3d.GX_REG_FOG_TABLE,
		"EDGE_COLOR":   gx3d.GX_REG_EDGE_COLOR,
		"TOON_TABLE":   gx3d.GX_REG_TOON_TABLE,
		"ALPHA_REF":    gx3d.GX_REG_ALPHA_TEST_REF,
		"SHADOW":       gx3d.GX_MODE_SHADOW,
		"TOON":         gx3d.GX_MODE_TOON,
		"DECAL":        gx3d.GX_MODE_DECAL,
		"SCREEN_W":     screenW,
		"SCREEN_H":     screenH,
		"FRAME_CYCLES": frameCycles,
	}
	for name, v := range consts {
		gx.RawSetString(name, lua.LNumber(v))
	}
	L.SetGlobal("gx", gx)
}
