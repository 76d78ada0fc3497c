package library

import (
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"

	"agal/internal/value"
)

// NewRed builds the `:red` (network) module (§4's DOMAIN STACK:
// `github.com/gorilla/websocket`). Grounded on
// sentra/internal/network.NetworkModule's raw net.Listener/net.Conn use
// for ServidorTCP/Socket, and on sentra's
// internal/vm/network_websocket*.go files for servidor_ws's upgrade
// path, trimmed of sentra's port-scanning/probing features (out of
// this spec's scope) down to the accept-loop/read/write/upgrade shapes
// §4 lists.
func NewRed() value.Value {
	m := value.NewMapObj()
	m.Set("ServidorTCP", newServidorTCPClass())
	m.Set("Socket", newSocketClass())
	m.Set("servidor_ws", nativeFn("servidor_ws", 2, servidorWS))
	return m
}

// wsAdapter makes a *websocket.Conn look like an io.ReadWriteCloser of
// plain bytes, so Socket's lee/escribe/cierra work the same way whether
// the underlying transport is a raw TCP conn or an upgraded WS conn —
// §4 describes Socket as one class serving both ServidorTCP and
// servidor_ws.
type wsAdapter struct {
	conn    *websocket.Conn
	pending []byte
}

func (w *wsAdapter) Read(p []byte) (int, error) {
	if len(w.pending) == 0 {
		_, data, err := w.conn.ReadMessage()
		if err != nil {
			return 0, err
		}
		w.pending = data
	}
	n := copy(p, w.pending)
	w.pending = w.pending[n:]
	return n, nil
}

func (w *wsAdapter) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *wsAdapter) Close() error { return w.conn.Close() }

func newSocketClass() *value.Class {
	class := value.NewClass("Socket")
	inst := class.Instance
	inst.Set("lee", nativeFn("lee", 0, func(this value.Value, _ []value.Value, ctx value.NativeContext, _ interface{}) (value.Value, error) {
		conn, err := socketConn(this)
		if err != nil {
			return nil, err
		}
		return ctx.RunBlocking(func() (value.Value, error) {
			buf := make([]byte, 4096)
			n, rerr := conn.Read(buf)
			if rerr != nil {
				return nil, rerr
			}
			return value.String(buf[:n]), nil
		}), nil
	}), true)
	inst.Set("escribe", nativeFn("escribe", 1, func(this value.Value, args []value.Value, ctx value.NativeContext, _ interface{}) (value.Value, error) {
		conn, err := socketConn(this)
		if err != nil {
			return nil, err
		}
		text, ok := strArg(args, 0)
		if !ok {
			return nil, errArg("escribe", "una cadena")
		}
		return ctx.RunBlocking(func() (value.Value, error) {
			_, werr := conn.Write([]byte(text))
			return value.Never, werr
		}), nil
	}), true)
	inst.Set("cierra", nativeFn("cierra", 0, func(this value.Value, _ []value.Value, _ value.NativeContext, _ interface{}) (value.Value, error) {
		conn, err := socketConn(this)
		if err != nil {
			return nil, err
		}
		return value.Never, conn.Close()
	}), true)
	return class
}

func newSocketInstance(class *value.Class, conn io.ReadWriteCloser) *value.Instance {
	inst := value.NewLiveInstance(class)
	inst.Set("conexion", conn, false)
	return inst
}

func socketConn(this value.Value) (io.ReadWriteCloser, error) {
	inst, ok := this.(*value.Instance)
	if !ok {
		return nil, errArg("Socket", "una instancia")
	}
	v, ok := inst.Lookup("conexion", true)
	if !ok {
		return nil, errArg("Socket", "una conexion inicializada")
	}
	conn, ok := v.(io.ReadWriteCloser)
	if !ok {
		return nil, errArg("Socket", "una conexion valida")
	}
	return conn, nil
}

func newServidorTCPClass() *value.Class {
	socketClass := newSocketClass()
	class := value.NewClass("ServidorTCP")
	inst := class.Instance
	inst.Set("__constructor__", nativeFn("ServidorTCP", 1, func(this value.Value, args []value.Value, _ value.NativeContext, _ interface{}) (value.Value, error) {
		port, ok := numArg(args, 0)
		if !ok {
			return nil, errArg("ServidorTCP", "un numero de puerto")
		}
		p, ok := port.AsUsize()
		if !ok {
			return nil, errArg("ServidorTCP", "un puerto valido")
		}
		ln, err := net.Listen("tcp", addrFor(p))
		if err != nil {
			return nil, err
		}
		self, ok := this.(*value.Instance)
		if !ok {
			return nil, errArg("ServidorTCP", "una instancia")
		}
		self.Set("escuchador", ln, false)
		return value.Never, nil
	}), true)
	// aceptar blocks on the listener's next connection on the native
	// thread pool (§9), resolving to a Socket wrapping it — the
	// "promise-driven accept loop" of §4, one accepted connection per
	// call rather than a persistent push-based stream.
	inst.Set("aceptar", nativeFn("aceptar", 0, func(this value.Value, _ []value.Value, ctx value.NativeContext, _ interface{}) (value.Value, error) {
		self, ok := this.(*value.Instance)
		if !ok {
			return nil, errArg("ServidorTCP", "una instancia")
		}
		lnVal, ok := self.Lookup("escuchador", true)
		if !ok {
			return nil, errArg("ServidorTCP", "un servidor inicializado")
		}
		ln, ok := lnVal.(net.Listener)
		if !ok {
			return nil, errArg("ServidorTCP", "un escuchador valido")
		}
		return ctx.RunBlocking(func() (value.Value, error) {
			conn, err := ln.Accept()
			if err != nil {
				return nil, err
			}
			return newSocketInstance(socketClass, conn), nil
		}), nil
	}), true)
	inst.Set("cerrar", nativeFn("cerrar", 0, func(this value.Value, _ []value.Value, _ value.NativeContext, _ interface{}) (value.Value, error) {
		self, ok := this.(*value.Instance)
		if !ok {
			return nil, errArg("ServidorTCP", "una instancia")
		}
		lnVal, ok := self.Lookup("escuchador", true)
		if !ok {
			return value.Never, nil
		}
		ln, ok := lnVal.(net.Listener)
		if !ok {
			return value.Never, nil
		}
		return value.Never, ln.Close()
	}), true)
	return class
}

func addrFor(port int) string {
	return ":" + strconv.Itoa(port)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// servidorWS upgrades incoming HTTP connections on puerto to WebSocket
// and invokes manejador(socket) for each one (§4). Listening runs on its
// own goroutine rather than the bounded native pool, since an HTTP
// server's own Serve call never returns — it is not a one-shot blocking
// job the pool's fixed worker count could safely hold forever.
func servidorWS(_ value.Value, args []value.Value, ctx value.NativeContext, _ interface{}) (value.Value, error) {
	port, ok := numArg(args, 0)
	if !ok {
		return nil, errArg("servidor_ws", "un numero de puerto")
	}
	handler, ok := args[1].(*value.Function)
	if !ok {
		return nil, errArg("servidor_ws", "un manejador de funcion")
	}
	p, ok := port.AsUsize()
	if !ok {
		return nil, errArg("servidor_ws", "un puerto valido")
	}
	socketClass := newSocketClass()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		socket := newSocketInstance(socketClass, &wsAdapter{conn: conn})
		ctx.CallValue(handler, value.Null, []value.Value{socket})
	})

	server := &http.Server{Addr: addrFor(p), Handler: mux}
	go server.ListenAndServe()
	return value.Never, nil
}
