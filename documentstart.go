package natview

import (
	"encoding/json"
	"fmt"
	"strings"
)

// composeBaseDocumentStart builds the window-level part of the
// document-start bundle: CSP injection, permission navigator shims, and
// the unconditional window.open override. The Typed Channel client
// script is installed separately by package channel, after window
// construction, via NativeWindow.InstallDocumentStartScript.
func composeBaseDocumentStart(o WindowOptions) string {
	var b strings.Builder
	b.WriteString("(function(){\n")

	if o.CSP != "" {
		cspJSON, _ := json.Marshal(o.CSP)
		fmt.Fprintf(&b, `var __applyCSP=function(){var m=document.createElement('meta');m.httpEquiv='Content-Security-Policy';m.content=%s;(document.head||document.documentElement).appendChild(m);};`+"\n", string(cspJSON))
		b.WriteString("if(document.readyState==='loading'){document.addEventListener('DOMContentLoaded',__applyCSP);}else{__applyCSP();}\n")
	}

	if !o.AllowGeolocation {
		b.WriteString("try{delete navigator.geolocation;}catch(e){}\n")
	}
	if !o.AllowCamera || !o.AllowMicrophone {
		b.WriteString("(function(){\n")
		b.WriteString("if(!navigator.mediaDevices||!navigator.mediaDevices.getUserMedia)return;\n")
		b.WriteString("var __orig=navigator.mediaDevices.getUserMedia.bind(navigator.mediaDevices);\n")
		fmt.Fprintf(&b, "var __allowCamera=%t, __allowMic=%t;\n", o.AllowCamera, o.AllowMicrophone)
		b.WriteString("navigator.mediaDevices.getUserMedia=function(c){\n")
		b.WriteString("if(c&&c.video&&!__allowCamera)return Promise.reject(new DOMException('camera denied','NotAllowedError'));\n")
		b.WriteString("if(c&&c.audio&&!__allowMic)return Promise.reject(new DOMException('microphone denied','NotAllowedError'));\n")
		b.WriteString("return __orig(c);\n};\n")
		b.WriteString("})();\n")
	}

	b.WriteString("window.open=function(){return null;};\n")
	b.WriteString("})();")
	return b.String()
}
