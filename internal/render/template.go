package render

const documentHTMLTemplate = `<!doctype html>
<html lang="fr">
<head>
  <meta charset="utf-8" />
  <title>{{.Input.Title}} {{.Input.Number}}</title>
  <style>
    @page { size: A4; margin: 12mm; }
    * { box-sizing: border-box; }
    body {
      margin: 0;
      font-family: "Helvetica Neue", Helvetica, Arial, sans-serif;
      font-size: 11px;
      line-height: 1.45;
      color: #1f2933;
    }
    body.preview { background: #eef1f4; padding: 16px; }
    body.preview .page { background: #ffffff; box-shadow: 0 2px 6px rgba(0,0,0,0.08); padding: 12mm; }
    .page { width: 186mm; margin: 0 auto; }
    .header { display: flex; justify-content: space-between; border-bottom: 2px solid #1f2933; padding-bottom: 8px; margin-bottom: 12px; }
    .header h1 { margin: 0; font-size: 18px; letter-spacing: 0.5px; }
    .number { font-weight: 700; text-align: right; }
    .section { margin-bottom: 12px; }
    .section h2 { font-size: 12px; text-transform: uppercase; margin: 0 0 6px; color: #52606d; }
    .grid { display: flex; gap: 16px; }
    .grid > div { flex: 1; }
    .muted { color: #7b8794; }
    .small { font-size: 10px; }
    table.band { width: 100%; border-collapse: collapse; }
    table.band td { padding: 3px 0; border-bottom: 1px solid #e4e7eb; }
    table.band td:last-child { text-align: right; white-space: nowrap; }
    tr.band-discount td { color: #2f8132; }
    tr.band-total td { font-weight: 700; border-top: 2px solid #1f2933; }
    .option-form__row { display: flex; justify-content: space-between; padding: 2px 0; }
    .option-form__circle { display: inline-block; width: 10px; height: 10px; border: 1px solid #1f2933; border-radius: 50%; margin-right: 6px; }
    .line { display: inline-block; border-bottom: 1px solid #1f2933; height: 10px; }
    .line--xs { width: 18px; } .line--sm { width: 28px; } .line--md { width: 48px; }
    .signatures { display: flex; justify-content: space-between; margin-top: 16px; }
    .signatures > div { width: 45%; height: 60px; border-top: 1px solid #9aa5b1; padding-top: 4px; }
    .status { font-weight: 700; }

    body.compact-sections .section { margin-bottom: 8px; }
    body.compact-sections .header { margin-bottom: 8px; }
    body.compact-density { line-height: 1.3; }
    body.compact-density table.band td { padding: 2px 0; }
    body.compact-text { font-size: 10px; }
    body.compact-text .section h2 { font-size: 11px; }
    body.compact-final { font-size: 9px; line-height: 1.2; }
    body.compact-final .signatures > div { height: 44px; }
  </style>
</head>
<body class="{{bodyClasses .}}">
<div class="page">
  <div class="header">
    <div>
      <h1>{{.Input.GiteName}}</h1>
      <div>{{.Input.GiteAddress}}</div>
    </div>
    <div class="number">
      <div>{{.Input.Title}}</div>
      <div>N° {{.Input.Number}}</div>
    </div>
  </div>

  <div class="section grid">
    <div>
      <h2>Propriétaires</h2>
      <div>{{.Input.OwnersNames}}</div>
      <div>{{.Input.OwnersAddress}}</div>
      {{range .Input.ContactLines}}<div>{{.}}</div>{{end}}
    </div>
    <div>
      <h2>Locataire</h2>
      <div>{{.Input.TenantName}}</div>
      <div>{{.Input.TenantAddress}}</div>
      <div>{{.Input.TenantPhone}}</div>
      <div>{{.Input.Adults}} adulte(s), {{.Input.Children}} enfant(s) de 2 à 17 ans (capacité {{.Input.Capacity}})</div>
    </div>
  </div>

  {{if .Input.Characteristics}}
  <div class="section">
    <h2>Le gîte</h2>
    <ul class="caracteristiques-list">{{range .Input.Characteristics}}<li>{{.}}</li>{{end}}</ul>
  </div>
  {{end}}

  <div class="section">
    <h2>Séjour</h2>
    <div>Du {{.Input.StartDate}} à partir de {{.Input.ArrivalTime}} au {{.Input.EndDate}} avant {{.Input.DepartureTime}}, soit {{.Input.Nights}} nuit(s).</div>
  </div>

  <div class="section">
    <h2>Prix</h2>
    <table class="band">
      <tr><td>{{.Input.Nights}} nuit(s) x {{.Input.NightlyRate}}</td><td>{{.Input.BaseAmount}}</td></tr>
      {{if .Input.ShowDiscount}}<tr class="band-discount"><td>{{.Input.DiscountLabel}}{{if .Input.DiscountReason}} ({{.Input.DiscountReason}}){{end}}</td><td>{{.Input.Discount}}</td></tr>{{end}}
      {{range .Input.OptionRows}}<tr class="band-option{{if .Discount}} band-discount{{end}}"><td>{{.Label}}</td><td>{{.Amount}}</td></tr>{{end}}
      <tr class="band-total"><td>Total</td><td>{{.Input.GrandTotal}}</td></tr>
    </table>
    <div class="small muted">Taxe de séjour : {{.Input.TouristTaxInfo}}</div>
  </div>

  {{if .Input.ClientOptionRows}}
  <div class="section option-form">
    <div>Services annexes en option, à régler sur place (à entourer si souhaités) :</div>
    {{range .Input.ClientOptionRows}}
    <div class="option-form__row">
      <div><span class="option-form__circle"></span><strong>{{.Label}}</strong> <span class="muted">{{.Meta}}</span></div>
      {{if .Unit}}<div>{{.Tariff}} ×{{if .Nights}} <span class="line line--xs"></span> {{.Unit}} × {{.Nights}} nuit(s){{else}} <span class="line line--sm"></span> {{.Unit}}{{end}} = <span class="line line--md"></span> €</div>{{end}}
    </div>
    {{end}}
  </div>
  {{end}}

  <div class="section">
    <h2>Paiement</h2>
    {{if .Input.Invoice}}
    <div class="status">{{.Input.PaymentStatusLine}}</div>
    {{if .Input.PaymentDueDate}}<div>À régler avant le {{.Input.PaymentDueDate}}</div>{{end}}
    {{else}}
    <div>Arrhes de {{.Input.Deposit}} à verser avant le {{.Input.DepositDueDate}}.</div>
    <p>{{.Input.OnSitePayment}}</p>
    {{end}}
    <div class="small">IBAN {{.Input.IBAN}}{{if .Input.BIC}} - BIC {{.Input.BIC}}{{end}} - {{.Input.AccountHolder}}</div>
  </div>

  <div class="section grid">
    <div>
      <h2>Mentions</h2>
      <ul>{{range .Input.Notes}}<li>{{.}}</li>{{end}}</ul>
    </div>
    <div>
      <h2>Clauses</h2>
      <ul>{{range .Input.Clauses}}<li>{{.}}</li>{{end}}</ul>
      {{if .Input.Remarks}}<p class="small">{{.Input.Remarks}}</p>{{end}}
    </div>
  </div>

  {{if not .Input.Invoice}}
  <div class="section">
    <div>Fait à {{.Input.SignaturePlace}}, le {{.Input.SignatureDate}}</div>
    <div class="signatures"><div>Le propriétaire</div><div>Le locataire</div></div>
  </div>
  {{end}}
  <div class="small muted">Contact : {{.Input.ContactEmail}}</div>
</div>
</body>
</html>
`
