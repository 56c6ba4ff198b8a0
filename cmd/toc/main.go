//go:build js && wasm
// +build js,wasm

package main

import (
	"encoding/json"
	"fmt"
	"syscall/js"
	"time"

	"github.com/harunosuke/web/builder/toc"
)

// scrollOffset keeps a clicked heading clear of the sticky header.
const scrollOffset = 120

var (
	controller *toc.Controller
	document   = js.Global().Get("document")
	window     = js.Global()
)

func main() {
	c := make(chan struct{}, 0)

	js.Global().Set("initTOC", js.FuncOf(initTOC))
	js.Global().Set("stopTOC", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		if controller != nil {
			controller.Stop()
			controller = nil
		}
		return nil
	}))

	if document.Get("readyState").String() == "loading" {
		var ready js.Func
		ready = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
			initTOC(js.Undefined(), nil)
			ready.Release()
			return nil
		})
		document.Call("addEventListener", "DOMContentLoaded", ready)
	} else {
		initTOC(js.Undefined(), nil)
	}
	<-c
}

func initTOC(this js.Value, args []js.Value) interface{} {
	data := document.Call("getElementById", "toc-data")
	if data.IsNull() {
		return false
	}

	var entries []toc.Entry
	if err := json.Unmarshal([]byte(data.Get("textContent").String()), &entries); err != nil {
		fmt.Println("TOC data error:", err)
		return false
	}
	if len(entries) == 0 {
		return false
	}

	identity := ""
	if v := data.Get("dataset").Get("identity"); v.Type() == js.TypeString {
		identity = v.String()
	}
	if controller != nil {
		controller.SetDocument(identity, entries)
		return true
	}

	controller = toc.New(entries, toc.Env{
		Signals:  domSignals{},
		Geometry: domGeometry{},
		Viewport: domViewport{},
		Frames:   animationFrames{},
		Clock:    wallClock{},
	})
	controller.SetDocument(identity, entries)
	controller.OnChange(markActive)
	bindClicks()
	controller.Start()
	return true
}

func markActive(id string) {
	links := document.Call("querySelectorAll", "a[data-toc-id]")
	for i := 0; i < links.Length(); i++ {
		link := links.Index(i)
		active := id != "" && link.Get("dataset").Get("tocId").String() == id
		link.Get("classList").Call("toggle", "active", active)
	}
}

func bindClicks() {
	links := document.Call("querySelectorAll", "a[data-toc-id]")
	for i := 0; i < links.Length(); i++ {
		link := links.Index(i)
		id := link.Get("dataset").Get("tocId").String()
		link.Call("addEventListener", "click", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
			el := document.Call("getElementById", id)
			if el.IsNull() {
				return nil
			}
			args[0].Call("preventDefault")
			top := el.Call("getBoundingClientRect").Get("top").Float() + window.Get("scrollY").Float() - scrollOffset
			opts := map[string]interface{}{"top": top, "behavior": "smooth"}
			window.Call("scrollTo", opts)
			window.Get("history").Call("replaceState", nil, "", "#"+id)
			return nil
		}))
	}
}

type domSignals struct{}

func (domSignals) Subscribe(fn func()) func() {
	handler := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		fn()
		return nil
	})
	opts := map[string]interface{}{"passive": true}
	window.Call("addEventListener", "scroll", handler, opts)
	window.Call("addEventListener", "resize", handler, opts)
	return func() {
		window.Call("removeEventListener", "scroll", handler, opts)
		window.Call("removeEventListener", "resize", handler, opts)
		handler.Release()
	}
}

type domGeometry struct{}

func (domGeometry) Measure(id string) (toc.Rect, bool) {
	el := document.Call("getElementById", id)
	if el.IsNull() || el.IsUndefined() {
		return toc.Rect{}, false
	}
	r := el.Call("getBoundingClientRect")
	return toc.Rect{Top: r.Get("top").Float(), Bottom: r.Get("bottom").Float()}, true
}

type domViewport struct{}

func (domViewport) ScrollY() float64 {
	return window.Get("scrollY").Float()
}

type animationFrames struct{}

func (animationFrames) RequestFrame(fn func()) func() {
	var cb js.Func
	done := false
	cb = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		done = true
		cb.Release()
		fn()
		return nil
	})
	handle := window.Call("requestAnimationFrame", cb)
	return func() {
		if done {
			return
		}
		done = true
		window.Call("cancelAnimationFrame", handle)
		cb.Release()
	}
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }
