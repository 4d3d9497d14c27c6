package ui

// Source is polled once per frame for raw input. platform.Window implements it.
type Source interface {
	GetCursorPos() (float64, float64)
	IsMouseButtonPressed(button int) bool
	IsKeyPressed(key int) bool
	SetScrollCallback(cb func(xoff, yoff float64))
}

// Mouse button constants
const (
	MouseLeft   = 0
	MouseRight  = 1
	MouseMiddle = 2
)

// Key codes, same values as GLFW.
const (
	Key1      = 49
	Key2      = 50
	Key3      = 51
	Key4      = 52
	Key5      = 53
	Key6      = 54
	Key7      = 55
	KeyEscape = 256
)

var polledKeys = []int{KeyEscape, Key1, Key2, Key3, Key4, Key5, Key6, Key7}

// InputManager tracks mouse and keyboard state between frames so callers can
// ask for edges (pressed this frame) as well as levels (held).
type InputManager struct {
	MouseX, MouseY           float64
	MouseDeltaX, MouseDeltaY float64
	lastMouseX, lastMouseY   float64
	ScrollDelta              float64

	mouseButtons     [3]bool
	mouseButtonsPrev [3]bool

	keys     [512]bool
	keysPrev [512]bool

	source     Source
	firstFrame bool
}

// NewInputManager creates an input manager and hooks the scroll callback.
func NewInputManager(source Source) *InputManager {
	im := &InputManager{
		source:     source,
		firstFrame: true,
	}
	source.SetScrollCallback(func(xoff, yoff float64) {
		im.ScrollDelta += yoff
	})
	return im
}

// Update should be called once per frame, after events are polled.
func (im *InputManager) Update() {
	x, y := im.source.GetCursorPos()
	if im.firstFrame {
		im.lastMouseX, im.lastMouseY = x, y
		im.firstFrame = false
	}
	im.MouseDeltaX = x - im.lastMouseX
	im.MouseDeltaY = y - im.lastMouseY
	im.lastMouseX, im.lastMouseY = x, y
	im.MouseX, im.MouseY = x, y

	im.mouseButtonsPrev = im.mouseButtons
	im.keysPrev = im.keys

	for b := range im.mouseButtons {
		im.mouseButtons[b] = im.source.IsMouseButtonPressed(b)
	}
	for _, k := range polledKeys {
		im.keys[k] = im.source.IsKeyPressed(k)
	}
}

// EndFrame clears per-frame state
func (im *InputManager) EndFrame() {
	im.ScrollDelta = 0
}

func (im *InputManager) IsMouseDown(button int) bool {
	if button < 0 || button >= len(im.mouseButtons) {
		return false
	}
	return im.mouseButtons[button]
}

func (im *InputManager) IsMousePressed(button int) bool {
	if button < 0 || button >= len(im.mouseButtons) {
		return false
	}
	return im.mouseButtons[button] && !im.mouseButtonsPrev[button]
}

func (im *InputManager) IsKeyDown(key int) bool {
	if key < 0 || key >= len(im.keys) {
		return false
	}
	return im.keys[key]
}

func (im *InputManager) IsKeyPressed(key int) bool {
	if key < 0 || key >= len(im.keys) {
		return false
	}
	return im.keys[key] && !im.keysPrev[key]
}
