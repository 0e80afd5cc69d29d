package video

import "github.com/dmgcore/coregb/addr"

// renderScanline draws the background, window, and sprite layers for
// the current ly into the framebuffer. Called once per line, at the
// pixel-transfer -> HBlank transition.
func (p *PPU) renderScanline() {
	if p.ly > lastVisibleLine {
		return
	}

	bgPixels := p.renderBackgroundAndWindowLine()
	p.renderSpriteLine(bgPixels)
}

// renderBackgroundAndWindowLine draws the background (and, where it
// overlaps, the window) for the current scanline and returns the raw
// 2-bit color index written at each of the 160 columns, used by the
// sprite pass to decide behind-BG priority.
func (p *PPU) renderBackgroundAndWindowLine() [Width]uint8 {
	var colorIndices [Width]uint8
	palette := DecodePalette(p.bgp)

	bgOn := p.lcdc&lcdcBGOn != 0
	windowOn := p.lcdc&lcdcWindowOn != 0 && int(p.wy) <= int(p.ly)

	if bgOn {
		y := (int(p.ly) + int(p.scy)) & 0xFF
		tileRow := y / 8
		mapBase := addr.TileMap0
		if p.lcdc&lcdcBGMapSelect != 0 {
			mapBase = addr.TileMap1
		}

		for screenX := 0; screenX < Width; screenX++ {
			x := (screenX + int(p.scx)) & 0xFF
			col := x / 8
			tileID := p.vram[mapBase-addr.VRAMStart+uint16(tileRow*32+col)]
			data := p.tileDataAddr(tileID)
			b1 := p.vram[data+uint16((y%8)*2)-addr.VRAMStart]
			b2 := p.vram[data+uint16((y%8)*2)+1-addr.VRAMStart]
			bit := uint(7 - (x % 8))
			idx := ((b2>>bit)&1)<<1 | (b1>>bit)&1
			colorIndices[screenX] = idx
			p.fb.setPixel(screenX, int(p.ly), palette[idx])
		}
	} else {
		for screenX := 0; screenX < Width; screenX++ {
			p.fb.setPixel(screenX, int(p.ly), 0)
		}
	}

	if windowOn {
		wy := int(p.windowLine)
		tileRow := wy / 8
		mapBase := addr.TileMap0
		if p.lcdc&lcdcWindowMap != 0 {
			mapBase = addr.TileMap1
		}

		winStartX := int(p.wx) - 7
		for screenX := 0; screenX < Width; screenX++ {
			wx := screenX - winStartX
			if wx < 0 {
				continue
			}
			col := wx / 8
			tileID := p.vram[mapBase-addr.VRAMStart+uint16(tileRow*32+col)]
			data := p.tileDataAddr(tileID)
			b1 := p.vram[data+uint16((wy%8)*2)-addr.VRAMStart]
			b2 := p.vram[data+uint16((wy%8)*2)+1-addr.VRAMStart]
			bit := uint(7 - (wx % 8))
			idx := ((b2>>bit)&1)<<1 | (b1>>bit)&1
			colorIndices[screenX] = idx
			p.fb.setPixel(screenX, int(p.ly), palette[idx])
		}

		p.windowLine++
	}

	return colorIndices
}

// tileDataAddr resolves a tile id to its absolute VRAM address under
// the LCDC.4 addressing mode.
func (p *PPU) tileDataAddr(tileID uint8) uint16 {
	if p.lcdc&lcdcTileAddrMode != 0 {
		return addr.TileDataUnsigned + uint16(tileID)*16
	}
	return uint16(int32(addr.TileDataSigned) + int32(int8(tileID))*16)
}

type spriteEntry struct {
	y, x, tile, attr uint8
	oamIndex         int
}

// renderSpriteLine draws sprites intersecting the current scanline.
// Lower OAM indices win on x-overlap; this falls out of iterating OAM
// in reverse so lower-indexed sprites are drawn last and overwrite
// higher-indexed ones at the same pixel.
func (p *PPU) renderSpriteLine(bgColorIndices [Width]uint8) {
	if p.lcdc&lcdcObjOn == 0 {
		return
	}

	height := 8
	if p.lcdc&lcdcObjSize != 0 {
		height = 16
	}

	var visible []spriteEntry
	for i := 0; i < 40 && len(visible) < 10; i++ {
		base := i * 4
		sy := int(p.oam[base]) - 16
		if int(p.ly) < sy || int(p.ly) >= sy+height {
			continue
		}
		visible = append(visible, spriteEntry{
			y:        p.oam[base],
			x:        p.oam[base+1],
			tile:     p.oam[base+2],
			attr:     p.oam[base+3],
			oamIndex: i,
		})
	}

	palettes := [2][4]uint8{DecodePalette(p.obp0), DecodePalette(p.obp1)}

	for i := len(visible) - 1; i >= 0; i-- {
		s := visible[i]
		sy := int(s.y) - 16
		sx := int(s.x) - 8
		row := int(p.ly) - sy
		flipY := s.attr&0x40 != 0
		flipX := s.attr&0x20 != 0
		behindBG := s.attr&0x80 != 0
		paletteIdx := (s.attr >> 4) & 1

		tile := s.tile
		if height == 16 {
			tile &^= 1
		}
		if flipY {
			row = height - 1 - row
		}

		dataBase := addr.TileDataUnsigned + uint16(tile)*16 - addr.VRAMStart
		b1 := p.vram[dataBase+uint16(row*2)]
		b2 := p.vram[dataBase+uint16(row*2+1)]

		for px := 0; px < 8; px++ {
			screenX := sx + px
			if screenX < 0 || screenX >= Width {
				continue
			}
			bit := px
			if !flipX {
				bit = 7 - px
			}
			colorIdx := ((b2>>uint(bit))&1)<<1 | (b1>>uint(bit))&1
			if colorIdx == 0 {
				continue // transparent
			}
			if behindBG && bgColorIndices[screenX] != 0 {
				continue
			}
			p.fb.setPixel(screenX, int(p.ly), palettes[paletteIdx][colorIdx])
		}
	}
}
