//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/inamate/vecgfx/internal/emit"
	"github.com/inamate/vecgfx/internal/emit/script"
	"github.com/inamate/vecgfx/internal/engine"
)

var eng *engine.Engine

func main() {
	eng = engine.NewEngine(engine.NewRegistry(script.DefaultTemplate()), nil)

	api := js.Global().Get("Object").New()

	// Commands
	api.Set("loadDocument", js.FuncOf(loadDocument))
	api.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	api.Set("setOptions", js.FuncOf(setOptions))
	api.Set("move", js.FuncOf(move))
	api.Set("scale", js.FuncOf(scale))

	// Queries
	api.Set("render", js.FuncOf(render))
	api.Set("formats", js.FuncOf(formats))
	api.Set("getBounds", js.FuncOf(getBounds))
	api.Set("getDocument", js.FuncOf(getDocument))

	js.Global().Set("vecgfx", api)
	js.Global().Set("vecgfxReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func failure(msg string) interface{} {
	return js.ValueOf(map[string]interface{}{"error": msg})
}

func ok() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func loadDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return failure("missing document JSON")
	}
	if err := eng.LoadDocument(args[0].String()); err != nil {
		return failure(err.Error())
	}
	return ok()
}

func loadSampleDocument(this js.Value, args []js.Value) interface{} {
	drawingID := "drw_sample"
	if len(args) > 0 && args[0].Type() == js.TypeString {
		drawingID = args[0].String()
	}
	eng.LoadSampleDocument(drawingID)
	return ok()
}

func setOptions(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return failure("missing options JSON")
	}
	var opts emit.Options
	if err := json.Unmarshal([]byte(args[0].String()), &opts); err != nil {
		return failure(err.Error())
	}
	eng.SetOptions(opts)
	return ok()
}

func move(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return failure("move needs dx and dy")
	}
	eng.Move(float32(args[0].Float()), float32(args[1].Float()))
	return ok()
}

func scale(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return failure("scale needs sx and sy")
	}
	sx, sy := float32(args[0].Float()), float32(args[1].Float())
	strokeScale := float32(1)
	if len(args) > 2 && args[2].Type() == js.TypeNumber {
		strokeScale = float32(args[2].Float())
	}
	eng.Scale(sx, sy, strokeScale)
	return ok()
}

// render(format[, optionsJSON]) returns {output} or {error}.
func render(this js.Value, args []js.Value) interface{} {
	format := "svg"
	if len(args) > 0 && args[0].Type() == js.TypeString {
		format = args[0].String()
	}

	var out string
	var err error
	if len(args) > 1 && args[1].Type() == js.TypeString {
		var opts emit.Options
		if err := json.Unmarshal([]byte(args[1].String()), &opts); err != nil {
			return failure(err.Error())
		}
		out, err = eng.RenderWith(format, &opts)
	} else {
		out, err = eng.Render(format)
	}
	if err != nil {
		return failure(err.Error())
	}
	return js.ValueOf(map[string]interface{}{"output": out})
}

func formats(this js.Value, args []js.Value) interface{} {
	names := eng.Formats()
	out := make([]interface{}, len(names))
	for i, n := range names {
		out[i] = n
	}
	return js.ValueOf(out)
}

func getBounds(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.BoundsJSON())
}

func getDocument(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetDocument())
}
