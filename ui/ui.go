// Package ui is the pond's visualization surface: a single glfw/gl window
// blitting a texture built from pond.ColorByte, redrawn once per refresh
// boundary. It only renders and reports input events; the tick/report/dump
// scheduling stays in the simulation loop that owns a Surface.
package ui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/chixon/nanopond-ch/pond"
)

// Shaders for a 2D texture.
const (
	vertexShader = `
  #version 330

  attribute vec3 position;
  attribute vec2 uv;
  varying vec2 vuv;
  void main(void){
    gl_Position = vec4(position, 1.0);
    vuv = uv;
  }
  ` + "\x00"

	fragmentShader = `
  #version 330

  varying vec2 vuv;
  uniform sampler2D texture;
  void main(void){
    gl_FragColor = texture2D(texture, vuv);
  }
  ` + "\x00"
)

// compileShader compiles a shader.
func compileShader(code string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	ccode := gl.Str(code)
	gl.ShaderSource(shader, 1, &ccode, nil)
	gl.CompileShader(shader)
	var result int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &result)
	if result == gl.FALSE {
		var length int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &length)
		log := strings.Repeat("\x00", int(length+1))
		gl.GetShaderInfoLog(shader, length, nil, gl.Str(log))
		return 0, fmt.Errorf("ui: failed to compile shader: %v\n %v", code, log)
	}
	return shader, nil
}

// newProgram creates and links the texture-blit program.
func newProgram() (uint32, error) {
	vs, err := compileShader(vertexShader, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fs, err := compileShader(fragmentShader, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}
	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)
	var result int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &result)
	if result == gl.FALSE {
		var length int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &length)
		log := strings.Repeat("\x00", int(length+1))
		gl.GetProgramInfoLog(program, length, nil, gl.Str(log))
		return 0, fmt.Errorf("ui: failed to link program: %v", log)
	}
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)
	return program, nil
}

var vertexPosition = []float32{
	1, 1,
	-1, 1,
	-1, -1,
	1, -1,
}
var vertexUV = []float32{
	1, 0,
	0, 0,
	0, 1,
	1, 1,
}

// updateTexture re-uploads img as the 2D texture drawn by program.
func updateTexture(program uint32, img *image.RGBA) {
	var textureId uint32
	gl.GenTextures(1, &textureId)
	gl.BindTexture(gl.TEXTURE_2D, textureId)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA,
		int32(img.Rect.Size().X), int32(img.Rect.Size().Y),
		0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	positionLocation := uint32(gl.GetAttribLocation(program, gl.Str("position\x00")))
	uvLocation := uint32(gl.GetAttribLocation(program, gl.Str("uv\x00")))
	textureLocation := gl.GetUniformLocation(program, gl.Str("texture\x00"))
	gl.EnableVertexAttribArray(positionLocation)
	gl.EnableVertexAttribArray(uvLocation)
	gl.Uniform1i(textureLocation, 0)
	gl.VertexAttribPointer(positionLocation, 2, gl.FLOAT, false, 0, gl.Ptr(vertexPosition))
	gl.VertexAttribPointer(uvLocation, 2, gl.FLOAT, false, 0, gl.Ptr(vertexUV))
	gl.BindTexture(gl.TEXTURE_2D, textureId)
	gl.DrawArrays(gl.TRIANGLE_FAN, 0, 4)
}

// EventKind identifies one of the three UI events the surface can report.
type EventKind int

const (
	EventQuit EventKind = iota
	EventCycleScheme
	EventInspect
)

// Event is a single UI occurrence drained from a Surface by PollEvents.
// X and Y are grid coordinates, set only for EventInspect.
type Event struct {
	Kind EventKind
	X, Y int
}

// Surface owns the glfw window and gl program used to render one pond.
type Surface struct {
	window  *glfw.Window
	program uint32
	width   int
	height  int
	palette [256]color.RGBA
	events  chan Event
}

// NewSurface opens a width x height window sized 1:1 with the pond grid,
// so cursor coordinates map directly onto cell coordinates without a
// separate viewport transform.
func NewSurface(width, height int) (*Surface, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("ui: glfw init: %w", err)
	}
	window, err := glfw.CreateWindow(width, height, "Nanopond-CH", nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("ui: create window: %w", err)
	}
	window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("ui: gl init: %w", err)
	}
	program, err := newProgram()
	if err != nil {
		return nil, err
	}
	gl.UseProgram(program)
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)

	s := &Surface{
		window:  window,
		program: program,
		width:   width,
		height:  height,
		palette: grayscalePalette(),
		events:  make(chan Event, 16),
	}
	window.SetMouseButtonCallback(s.onMouseButton)
	return s, nil
}

// grayscalePalette maps a ColorByte value directly onto a gray level; the
// spec leaves the byte's final pixel color unspecified beyond "one byte
// per cell", so this is the surface's own rendering choice.
func grayscalePalette() [256]color.RGBA {
	var p [256]color.RGBA
	for i := range p {
		g := uint8(i)
		p[i] = color.RGBA{R: g, G: g, B: g, A: 255}
	}
	return p
}

func (s *Surface) onMouseButton(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mod glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}
	var evt Event
	switch button {
	case glfw.MouseButtonLeft:
		cx, cy := w.GetCursorPos()
		evt = Event{Kind: EventInspect, X: int(cx), Y: int(cy)}
	case glfw.MouseButtonRight:
		evt = Event{Kind: EventCycleScheme}
	default:
		return
	}
	select {
	case s.events <- evt:
	default:
		// event buffer full; drop rather than block the callback
	}
}

// Render paints one frame: the whole grid colored through scheme against
// snap, uploaded as a texture and swapped onto the window.
func (s *Surface) Render(store *pond.Store, scheme pond.ColorScheme, snap pond.Snapshot) {
	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	store.Each(func(x, y int, c *pond.Cell) {
		b := pond.ColorByte(c, scheme, snap)
		img.Set(x, y, s.palette[b])
	})
	updateTexture(s.program, img)
	s.window.SwapBuffers()
}

// PollEvents pumps the glfw event loop and returns every event observed
// since the last call, including an EventQuit if the window close button
// or equivalent was triggered.
func (s *Surface) PollEvents() []Event {
	glfw.PollEvents()
	var out []Event
	if s.window.ShouldClose() {
		out = append(out, Event{Kind: EventQuit})
	}
drain:
	for {
		select {
		case e := <-s.events:
			out = append(out, e)
		default:
			break drain
		}
	}
	return out
}

// Close destroys the window and terminates glfw.
func (s *Surface) Close() {
	s.window.Destroy()
	glfw.Terminate()
}
