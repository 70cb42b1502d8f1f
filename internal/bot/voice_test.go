package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/pkg/errors"
)

type updateCall struct {
	guildID   snowflake.ID
	channelID *snowflake.ID
}

type fakeUpdater struct {
	mu    sync.Mutex
	calls []updateCall
	err   error
	// onUpdate runs after a successful join request, standing in for the gateway.
	onUpdate func(guildID snowflake.ID, channelID snowflake.ID)
}

func (f *fakeUpdater) UpdateVoiceState(_ context.Context, guildID snowflake.ID, channelID *snowflake.ID, _, _ bool) error {
	f.mu.Lock()
	f.calls = append(f.calls, updateCall{guildID: guildID, channelID: channelID})
	err, onUpdate := f.err, f.onUpdate
	f.mu.Unlock()

	if err != nil {
		return err
	}
	if onUpdate != nil && channelID != nil {
		go onUpdate(guildID, *channelID)
	}
	return nil
}

func TestVoiceGatewayAttach(t *testing.T) {
	updater := &fakeUpdater{}
	v := newVoiceGateway(updater)
	updater.onUpdate = func(guildID, channelID snowflake.ID) {
		other := snowflake.ID(999)
		if v.deliverState(guildID, &other, "wrong") {
			t.Error("state for another channel must not be consumed")
		}
		v.deliverServer(guildID, "token", "endpoint.discord.media")
		v.deliverState(guildID, &channelID, "session")
	}

	handle, err := v.Attach(context.Background(), 1, 100)
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if handle.GuildID != 1 || handle.ChannelID != 100 || handle.SessionID != "session" ||
		handle.Token != "token" || handle.Endpoint != "endpoint.discord.media" {
		t.Fatalf("handle = %+v", handle)
	}

	if v.deliverServer(1, "late", "late") {
		t.Fatal("completed attach must not consume further updates")
	}
	if handle.Epoch != 1 || v.Epoch(1) != 1 {
		t.Fatalf("epoch = %d, gateway epoch = %d, want 1", handle.Epoch, v.Epoch(1))
	}
}

func TestVoiceGatewayRejoinSwallowsLeaveEcho(t *testing.T) {
	updater := &fakeUpdater{}
	v := newVoiceGateway(updater)
	updater.onUpdate = func(guildID, channelID snowflake.ID) {
		if !v.deliverState(guildID, nil, "") {
			t.Error("leave echo during attach must be consumed")
		}
		v.deliverServer(guildID, "token", "endpoint")
		v.deliverState(guildID, &channelID, "session")
	}

	first, err := v.Attach(context.Background(), 1, 100)
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := v.Detach(context.Background(), 1); err != nil {
		t.Fatalf("detach: %v", err)
	}
	second, err := v.Attach(context.Background(), 1, 100)
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if second.Epoch <= first.Epoch {
		t.Fatalf("epochs = %d then %d, want increasing", first.Epoch, second.Epoch)
	}

	if v.deliverState(1, nil, "") {
		t.Fatal("a leave with no attach pending must reach the coordinator")
	}
}

func TestVoiceGatewayAttachTimeout(t *testing.T) {
	v := newVoiceGateway(&fakeUpdater{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := v.Attach(ctx, 1, 100); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if len(v.pending) != 0 {
		t.Fatal("timed out waiter must be removed")
	}
}

func TestVoiceGatewayAttachUpdateFails(t *testing.T) {
	v := newVoiceGateway(&fakeUpdater{err: errors.New("not connected")})

	if _, err := v.Attach(context.Background(), 1, 100); err == nil {
		t.Fatal("expected error")
	}
	if len(v.pending) != 0 {
		t.Fatal("failed waiter must be removed")
	}
}

func TestVoiceGatewayDetach(t *testing.T) {
	updater := &fakeUpdater{}
	v := newVoiceGateway(updater)

	if err := v.Detach(context.Background(), 1); err != nil {
		t.Fatalf("detach: %v", err)
	}
	if len(updater.calls) != 1 || updater.calls[0].channelID != nil {
		t.Fatalf("calls = %+v, want one leave request", updater.calls)
	}
}
