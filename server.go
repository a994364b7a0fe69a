package touchpad

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/websocket"
)

// Server exposes a pipeline over HTTP:
//
//	GET /state	pipeline State as JSON
//	GET /ws		websocket stream of touch events
//
// Websocket clients can send {"Path":"get/state"} for a State reply.
type Server struct {
	http.Server `json:"-"`
	bus         *Bus
	injector    *Injector
	pipeline    *Pipeline
	log         logrus.FieldLogger
	user        string
	passwd      string
}

// NewServer adds the server's bus injector to p's handlers, so it must be
// called before p.Run.  Events reach websockets on the consumer goroutine:
// each send may wait up to its write deadline (1s), and while it waits
// the queue fills and new events are dropped.  Keep MaxSockets small on a
// pad with slow clients.
func NewServer(p *Pipeline, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}

	s := &Server{pipeline: p, log: log}
	s.bus = NewBus("pad bus", log, s.connected, nil)
	s.injector = NewInjector("pad injector", s.bus)
	p.AddHandler(s.injector)

	s.bus.Handle("get/state", s.getState)

	mux := http.NewServeMux()
	mux.HandleFunc("/state", s.basicAuth(s.serveState))
	mux.HandleFunc("/ws", s.basicAuth(s.serveWebSocket))
	s.Handler = mux

	return s
}

// BasicAuth requires user and passwd on every request.  An empty user
// disables authentication.
func (s *Server) BasicAuth(user, passwd string) {
	s.user, s.passwd = user, passwd
}

// MaxSockets limits the number of websocket connections; see Bus.MaxSockets
func (s *Server) MaxSockets(n int) bool {
	return s.bus.MaxSockets(n)
}

// Bus the server's sockets are plugged into
func (s *Server) Bus() *Bus {
	return s.bus
}

// Dial a hub at rawurl and stream events to it until ctx is done.  The pad
// state is announced on each connection.
func (s *Server) Dial(ctx context.Context, user, passwd, rawurl string) error {
	u, err := url.Parse(rawurl)
	if err != nil {
		return err
	}
	ws := newWebSocket(u, "", s.bus)
	ws.SetFlag(SocketFlagBcast)
	return ws.Dial(ctx, user, passwd, s.announce)
}

// Run serves HTTP until ctx is done
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() { errc <- s.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		s.Shutdown(context.Background())
		<-errc
		return nil
	}
}

func (s *Server) announce() *Packet {
	pkt := &Packet{bus: s.bus, src: s.injector}
	state := s.pipeline.State()
	state.Path = "announce"
	return pkt.Marshal(&state)
}

func (s *Server) connected(sock Socketer) {
	if sock.TestFlag(SocketFlagState) {
		pkt := &Packet{bus: s.bus, src: sock}
		state := s.pipeline.State()
		pkt.Marshal(&state).Reply()
	}
}

func (s *Server) getState(pkt *Packet) {
	state := s.pipeline.State()
	pkt.Marshal(&state).Reply()
}

func (s *Server) serveState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.pipeline.State()); err != nil {
		s.log.WithError(err).Warn("writing state")
	}
}

func (s *Server) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	ws := newWebSocket(r.URL, r.RemoteAddr, s.bus)
	ws.SetFlag(SocketFlagBcast)
	if r.URL.Query().Get("state") != "" {
		ws.SetFlag(SocketFlagState)
	}
	serv := websocket.Server{Handler: websocket.Handler(ws.serve)}
	serv.ServeHTTP(w, r)
}

func (s *Server) basicAuth(next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(writer http.ResponseWriter, r *http.Request) {

		// skip basic authentication if no user
		if s.user == "" {
			next.ServeHTTP(writer, r)
			return
		}

		ruser, rpasswd, ok := r.BasicAuth()

		if ok {
			userHash := sha256.Sum256([]byte(s.user))
			passHash := sha256.Sum256([]byte(s.passwd))
			ruserHash := sha256.Sum256([]byte(ruser))
			rpassHash := sha256.Sum256([]byte(rpasswd))

			// https://www.alexedwards.net/blog/basic-authentication-in-go
			userMatch := (subtle.ConstantTimeCompare(userHash[:], ruserHash[:]) == 1)
			passMatch := (subtle.ConstantTimeCompare(passHash[:], rpassHash[:]) == 1)

			if userMatch && passMatch {
				next.ServeHTTP(writer, r)
				return
			}
		}

		writer.Header().Set("WWW-Authenticate", `Basic realm="restricted", charset="UTF-8"`)
		http.Error(writer, "Unauthorized", http.StatusUnauthorized)
	})
}
