package ws

import "testing"

func TestHubSendFansOutToAllConnections(t *testing.T) {
	h := NewHub()
	a := NewClient("u1", nil)
	b := NewClient("u1", nil)
	other := NewClient("u2", nil)
	h.Register(a)
	h.Register(b)
	h.Register(other)

	if got := h.Send("u1", []byte("hi")); got != 2 {
		t.Fatalf("expected 2 deliveries, got %d", got)
	}
	if string(<-a.send) != "hi" || string(<-b.send) != "hi" {
		t.Fatalf("unexpected payloads")
	}
	if len(other.send) != 0 {
		t.Fatalf("other user should not receive")
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	h := NewHub()
	c := NewClient("u1", nil)
	h.Register(c)
	for i := 0; i < sendBuffer; i++ {
		if h.Send("u1", []byte("x")) != 1 {
			t.Fatalf("send %d should be buffered", i)
		}
	}
	if got := h.Send("u1", []byte("overflow")); got != 0 {
		t.Fatalf("expected overflow to be dropped, got %d", got)
	}
	if h.Online("u1") != 0 {
		t.Fatalf("slow client should be unregistered")
	}
	// 关闭后再次发送不应 panic
	if h.Send("u1", []byte("x")) != 0 {
		t.Fatalf("no clients expected")
	}
}

func TestSendToOfflineUser(t *testing.T) {
	h := NewHub()
	n, err := h.SendJSON("nobody", map[string]string{"k": "v"})
	if err != nil || n != 0 {
		t.Fatalf("expected 0 deliveries without error, got %d %v", n, err)
	}
}
