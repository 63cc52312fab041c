// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cloud provides components for interacting with Google Cloud
// services. This file defines a reusable Pub/Sub message listener that
// delegates message processing to a Command, so the same listener can
// drive any pipeline: here it drives the generation pipeline from
// storage upload notifications.
//
// Logic Flow:
//  1. A PubSubListener is created with a client and a subscription ID.
//  2. A Command (the pipeline to run) is attached to the listener.
//  3. Listen starts an asynchronous background goroutine.
//  4. Each arriving message is handed to the Command inside its own
//     trace span.
//  5. The message is Ack'd only when the Command completes without
//     errors, giving at-least-once processing semantics.
//
// Structs:
//   - PubSubListener: Binds a subscription to a processing command.
//
// Functions:
//   - NewPubSubListener: Constructor.
//   - SetCommand: Attaches a processing command to the listener.
//   - Listen: Starts the background receive loop.
package cloud

import (
	"context"
	"log"

	"cloud.google.com/go/pubsub"
	"github.com/athirakr044-cloud/photo-motion-studio/internal/core/cor"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PubSubListener encapsulates the components needed to listen to a single
// Pub/Sub subscription. Listeners have a life-cycle independent of
// individual API requests, so they live in the cloud package alongside
// the other long-lived clients.
type PubSubListener struct {
	client       *pubsub.Client       // The client for interacting with the Pub/Sub service.
	subscription *pubsub.Subscription // The subscription this listener pulls messages from.
	command      cor.Command          // The command to execute for each received message.
}

// NewPubSubListener creates a listener for the given subscription ID. The
// command may be nil at construction time and attached later with
// SetCommand, which is how startup wires the pipeline in after the
// service clients exist.
func NewPubSubListener(
	pubsubClient *pubsub.Client,
	subscriptionID string,
	command cor.Command,
) (cmd *PubSubListener, err error) {
	sub := pubsubClient.Subscription(subscriptionID)

	cmd = &PubSubListener{
		client:       pubsubClient,
		subscription: sub,
		command:      command,
	}
	return cmd, nil
}

// SetCommand attaches a command to the listener. The first command to be
// set wins; later calls are ignored so the initial wiring is respected.
func (m *PubSubListener) SetCommand(command cor.Command) {
	if m.command == nil {
		m.command = command
	}
}

// Listen starts the asynchronous receive loop in a goroutine so it does
// not block the caller. Canceling the context stops the loop, which is
// how graceful shutdown drains the listeners.
func (m *PubSubListener) Listen(ctx context.Context) {
	log.Printf("listening: %s", m.subscription)

	go func() {
		tracer := otel.Tracer("message-listener")

		err := m.subscription.Receive(ctx, func(_ context.Context, msg *pubsub.Message) {
			spanCtx, span := tracer.Start(ctx, "receive-message")
			span.SetAttributes(attribute.String("msg", string(msg.Data)))

			chainCtx := cor.NewBaseContext()
			chainCtx.SetContext(spanCtx)
			chainCtx.Add(cor.CtxIn, string(msg.Data))

			m.command.Execute(chainCtx)

			if !chainCtx.HasErrors() {
				span.SetStatus(codes.Ok, "success")
				msg.Ack()
			} else {
				span.SetStatus(codes.Error, "failed")
				for _, e := range chainCtx.GetErrors() {
					log.Printf("error executing chain: %v", e)
				}
				// Not Ack'ing lets the message be redelivered per the
				// subscription's retry policy.
			}

			span.End()
		})

		if err != nil {
			log.Printf("error receiving data: %v", err)
		}
	}()
}
