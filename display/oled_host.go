//go:build !tinygo && !baremetal

package display

import (
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/devices/ssd1306"
	"periph.io/x/periph/devices/ssd1306/image1bit"
	"periph.io/x/periph/host"
)

// OLED drives an SSD1306 panel over I²C from a Linux host.
type OLED struct {
	bus    i2c.BusCloser
	dev    *ssd1306.Dev
	img    *image1bit.VerticalLSB
	cursor image.Point
}

// OpenOLED opens the named I²C bus ("" for the first one) and initializes a
// width x height panel.
func OpenOLED(busName string, width, height int) (*OLED, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", busName, err)
	}

	opts := ssd1306.DefaultOpts
	opts.W, opts.H = width, height
	dev, err := ssd1306.NewI2C(bus, &opts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("ssd1306 init: %w", err)
	}
	return &OLED{
		bus: bus,
		dev: dev,
		img: image1bit.NewVerticalLSB(dev.Bounds()),
	}, nil
}

func (o *OLED) Clear() {
	clear(o.img.Pix)
	o.cursor = image.Point{}
}

func (o *OLED) SetCursor(x, y int16) {
	o.cursor = image.Pt(int(x), int(y))
}

// PrintLine draws text with its top edge at the cursor.
func (o *OLED) PrintLine(text string) {
	face := basicfont.Face7x13
	d := font.Drawer{
		Dst:  o.img,
		Src:  &image.Uniform{C: image1bit.On},
		Face: face,
		Dot:  fixed.P(o.cursor.X, o.cursor.Y+face.Ascent),
	}
	d.DrawString(text)
	o.cursor.Y += face.Height
}

func (o *OLED) Present() error {
	return o.dev.Draw(o.dev.Bounds(), o.img, image.Point{})
}

func (o *OLED) Close() error {
	if err := o.dev.Halt(); err != nil {
		o.bus.Close()
		return err
	}
	return o.bus.Close()
}
