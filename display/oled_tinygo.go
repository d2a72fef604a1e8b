//go:build tinygo || baremetal

package display

import (
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ssd1306"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"
)

var white = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// OLED drives an SSD1306 panel over I²C from a microcontroller.
type OLED struct {
	dev  ssd1306.Device
	x, y int16
}

// NewOLED configures the panel at the usual 0x3C address. The bus must
// already be configured.
func NewOLED(bus drivers.I2C, width, height int16) *OLED {
	dev := ssd1306.NewI2C(bus)
	dev.Configure(ssd1306.Config{
		Width:    width,
		Height:   height,
		Address:  0x3C,
		VccState: ssd1306.SWITCHCAPVCC,
	})
	dev.ClearDisplay()
	return &OLED{dev: dev}
}

func (o *OLED) Clear() {
	o.dev.ClearBuffer()
	o.x, o.y = 0, 0
}

func (o *OLED) SetCursor(x, y int16) { o.x, o.y = x, y }

// PrintLine draws text with its top edge at the cursor; tinyfont positions
// by baseline.
func (o *OLED) PrintLine(text string) {
	font := &freemono.Regular9pt7b
	tinyfont.WriteLine(&o.dev, font, o.x, o.y+int16(font.YAdvance)-4, text, white)
	o.y += int16(font.YAdvance)
}

func (o *OLED) Present() error { return o.dev.Display() }
