package lambda

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInvoke struct {
	input *awslambda.InvokeInput
	out   *awslambda.InvokeOutput
	err   error
}

func (f *fakeInvoke) Invoke(ctx context.Context, params *awslambda.InvokeInput, optFns ...func(*awslambda.Options)) (*awslambda.InvokeOutput, error) {
	f.input = params
	return f.out, f.err
}

func TestInvokerRender(t *testing.T) {
	payload, err := json.Marshal(Response{StatusCode: 200, Body: "Published 10 bytes", Key: "calplot/commits.png", Published: true})
	require.NoError(t, err)
	fake := &fakeInvoke{out: &awslambda.InvokeOutput{StatusCode: 200, Payload: payload}}

	resp, err := NewInvoker(fake, "").Render(context.Background(), Event{Series: "commits", To: "2025-01-05"})
	require.NoError(t, err)
	assert.True(t, resp.Published)
	assert.Equal(t, "calplot/commits.png", resp.Key)

	assert.Equal(t, DefaultFunctionName, aws.ToString(fake.input.FunctionName))
	var sent Event
	require.NoError(t, json.Unmarshal(fake.input.Payload, &sent))
	assert.Equal(t, Event{Series: "commits", To: "2025-01-05"}, sent)
}

func TestInvokerErrors(t *testing.T) {
	_, err := NewInvoker(&fakeInvoke{err: errors.New("not authorized")}, "render").Render(context.Background(), Event{Series: "a"})
	assert.ErrorContains(t, err, "not authorized")

	fake := &fakeInvoke{out: &awslambda.InvokeOutput{
		FunctionError: aws.String("Unhandled"),
		Payload:       []byte(`{"errorMessage":"boom"}`),
	}}
	_, err = NewInvoker(fake, "render").Render(context.Background(), Event{Series: "a"})
	assert.ErrorContains(t, err, "boom")
}
