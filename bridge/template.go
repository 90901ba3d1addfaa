package bridge

// bundleSource is the document-start script template. {{.Prefix}} and
// {{.MaxMessageSize}} are substituted by text/template; everything else
// is literal JavaScript run inside the page before any page script.
//
// Tests assert literal substrings here for the hardening properties
// (defineProperty with writable:false, captured prototypes, the size
// cap constant, the __proto__ strip) — treat the byte-level layout as
// an external interface, not an implementation detail to refactor freely.
const bundleSource = `(function(){
"use strict";
var _slice = Array.prototype.slice;
var _filter = Array.prototype.filter;
var _push = Array.prototype.push;
var _indexOf = Array.prototype.indexOf;
var _splice = Array.prototype.splice;
var _stringify = JSON.stringify;
var _parse = JSON.parse;
var _defineProperty = Object.defineProperty;
var _freeze = Object.freeze;
var _create = Object.create;

var _pfx = {{printf "%q" .Prefix}};
var _maxLen = {{.MaxMessageSize}};
var _l = _create(null);
var _el = [];
var _orig = window.__native_message__;

function _e(t, p) {
  var ch = _pfx ? (_pfx + ":" + t) : t;
  if (arguments.length < 2) {
    return _stringify({"$ch": ch});
  }
  return _stringify({"$ch": ch, "p": p});
}

function _d(raw) {
  if (typeof raw !== "string" || raw.length > _maxLen) {
    return null;
  }
  var obj;
  try {
    obj = _parse(raw);
  } catch (e) {
    return null;
  }
  if (obj && typeof obj === "object" && Object.prototype.hasOwnProperty.call(obj, "__proto__")) {
    delete obj.__proto__;
  }
  if (!obj || typeof obj !== "object" || typeof obj.$ch !== "string") {
    return null;
  }
  return obj;
}

function _toExternal(raw) {
  var snapshot = _slice.call(_el);
  for (var i = 0; i < snapshot.length; i++) {
    try {
      snapshot[i](raw);
    } catch (e) {}
  }
  if (typeof _orig === "function") {
    try {
      _orig(raw);
    } catch (e) {}
  }
}

function _dispatch(raw) {
  var env = _d(raw);
  if (!env) {
    _toExternal(raw);
    return;
  }
  var ch = env.$ch;
  var name = ch;
  if (_pfx) {
    var want = _pfx + ":";
    if (ch.slice(0, want.length) !== want) {
      _toExternal(raw);
      return;
    }
    name = ch.slice(want.length);
  }
  var handlers = _l[name];
  if (!handlers) {
    _toExternal(raw);
    return;
  }
  var snapshot = _slice.call(handlers);
  for (var i = 0; i < snapshot.length; i++) {
    try {
      snapshot[i](env.p);
    } catch (e) {}
  }
}

var _channel = {
  send: function (type, payload) {
    if (arguments.length < 2) {
      window.ipc.postMessage(_e(type));
    } else {
      window.ipc.postMessage(_e(type, payload));
    }
  },
  on: function (type, handler) {
    var set = _l[type];
    if (!set) {
      set = [];
      _l[type] = set;
    }
    if (_indexOf.call(set, handler) === -1) {
      _push.call(set, handler);
    }
  },
  off: function (type, handler) {
    var set = _l[type];
    if (!set) return;
    var idx = _indexOf.call(set, handler);
    if (idx !== -1) {
      _splice.call(set, idx, 1);
    }
  }
};
_freeze(_channel);

var _listeners = {
  add: function (fn) {
    if (typeof fn === "function" && _indexOf.call(_el, fn) === -1) {
      _push.call(_el, fn);
    }
  },
  remove: function (fn) {
    var idx = _indexOf.call(_el, fn);
    if (idx !== -1) {
      _splice.call(_el, idx, 1);
    }
  }
};
_freeze(_listeners);

// window.__natview_native_post__ is installed by the native core itself
// before this script runs, the same way WebKit installs
// window.webkit.messageHandlers.* and WebView2 installs
// window.chrome.webview — it is not defined here.
var _ipc = { postMessage: function () {} };
_defineProperty(_ipc, "postMessage", {
  value: function (text) { window.__natview_native_post__(text); },
  writable: false,
  configurable: false
});
_freeze(_ipc);

_defineProperty(window, "ipc", { value: _ipc, writable: false, configurable: false });
_defineProperty(window, "__channel__", { value: _channel, writable: false, configurable: false });
_defineProperty(window, "__native_message_listeners__", { value: _listeners, writable: false, configurable: false });
_defineProperty(window, "__native_message__", { value: _dispatch, writable: false, configurable: false });
})();`
