package web

import "html/template"

// PaystackInlineURL is the hosted checkout widget.
const PaystackInlineURL = "https://js.paystack.co/v1/inline.js"

type checkoutPage struct {
	AppName   string
	ScriptURL string
	Key       string
	Email     string
	Amount    int64
	Currency  string
	Reference string
	Metadata  map[string]string
	Display   string
}

var checkoutTemplate = template.Must(template.New("checkout").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.AppName}} checkout</title>
<style>
body{font-family:system-ui,sans-serif;max-width:28rem;margin:3rem auto;padding:0 1rem;color:#1f2937}
button{background:#16a34a;color:#fff;border:0;border-radius:.5rem;padding:.75rem 1.5rem;font-size:1rem;cursor:pointer}
button[disabled]{opacity:.5;cursor:default}
#status{margin-top:1rem}
</style>
</head>
<body>
<h1>{{.AppName}}</h1>
<p>Rental payment of <strong>{{.Display}}</strong>.</p>
<p>The amount is held in escrow until you confirm you received the item.</p>
<button id="pay">Pay now</button>
<p id="status"></p>
<script src="{{.ScriptURL}}"></script>
<script>
(function () {
  var btn = document.getElementById("pay");
  var status = document.getElementById("status");
  function report(body) {
    return fetch("/payments/callback", {
      method: "POST",
      headers: {"Content-Type": "application/json"},
      body: JSON.stringify(body)
    }).then(function (r) { return r.json(); });
  }
  btn.addEventListener("click", function () {
    if (typeof PaystackPop === "undefined") {
      status.textContent = "The payment widget could not be loaded. Please try again later.";
      return;
    }
    btn.disabled = true;
    PaystackPop.setup({
      key: {{.Key}},
      email: {{.Email}},
      amount: {{.Amount}},
      currency: {{.Currency}},
      ref: {{.Reference}},
      metadata: {{.Metadata}},
      callback: function (resp) {
        status.textContent = "Confirming your payment...";
        report({reference: resp.reference, status: "success"}).then(function (r) {
          status.textContent = r.message;
        }).catch(function () {
          status.textContent = "We could not confirm the payment. Check the bot for updates.";
          btn.disabled = false;
        });
      },
      onClose: function () {
        btn.disabled = false;
        status.textContent = "Payment window closed. Nothing was charged.";
      }
    }).openIframe();
  });
})();
</script>
</body>
</html>
`))
