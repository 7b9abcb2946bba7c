package sms

import (
	"encoding/base64"
	"fmt"
	"log"
	"time"

	"github.com/valyala/fasthttp"
)

// Sender entrega a un teléfono el mensaje asociado a un opt-in path.
type Sender interface {
	OptIn(phone, path string) error
}

// Client cliente HTTP del proveedor de mensajería. El proveedor asocia cada
// opt-in path con el texto del mensaje; aquí solo se envía la suscripción.
type Client struct {
	baseURL    string
	authUser   string
	authPass   string
	disabled   bool
	httpClient *fasthttp.Client
}

// NewClient crea un cliente del proveedor. Con disabled=true solo loguea,
// útil en desarrollo y tests.
func NewClient(baseURL, authUser, authPass string, disabled bool) *Client {
	return &Client{
		baseURL:  baseURL,
		authUser: authUser,
		authPass: authPass,
		disabled: disabled,
		httpClient: &fasthttp.Client{
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}
}

// OptIn suscribe el teléfono al opt-in path en el proveedor.
func (c *Client) OptIn(phone, path string) error {
	if c.disabled {
		log.Printf("📵 SMS deshabilitado, se omite opt-in phone:%s path:%s", phone, path)
		return nil
	}

	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)
	args.Set("phone_number", phone)
	args.Set("opt_in_path_id", path)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/profile_update")
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/x-www-form-urlencoded")
	if c.authUser != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(c.authUser + ":" + c.authPass))
		req.Header.Set("Authorization", "Basic "+credentials)
	}
	req.SetBody(args.QueryString())

	if err := c.httpClient.Do(req, resp); err != nil {
		return fmt.Errorf("error enviando opt-in al proveedor: %v", err)
	}

	status := resp.StatusCode()
	if status >= 400 {
		return fmt.Errorf("proveedor respondió %d para path %s", status, path)
	}

	log.Printf("📤 Opt-in enviado path:%s", path)
	return nil
}
